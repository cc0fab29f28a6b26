package certgen

import (
	"crypto/x509"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func parseCert(t *testing.T, certPEM []byte) *x509.Certificate {
	t.Helper()
	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		t.Fatalf("invalid cert PEM")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("parse cert: %v", err)
	}
	return cert
}

func TestGenerateSelfSigned(t *testing.T) {
	certPEM, keyPEM, err := GenerateSelfSigned([]string{"localhost", "127.0.0.1"})
	if err != nil {
		t.Fatalf("GenerateSelfSigned error: %v", err)
	}

	cert := parseCert(t, certPEM)
	if cert.Subject.CommonName != "localhost" {
		t.Errorf("CN = %q; want %q", cert.Subject.CommonName, "localhost")
	}
	if !reflect.DeepEqual(cert.DNSNames, []string{"localhost"}) {
		t.Errorf("DNSNames = %v", cert.DNSNames)
	}
	if len(cert.IPAddresses) != 1 || !cert.IPAddresses[0].Equal(net.ParseIP("127.0.0.1")) {
		t.Errorf("IPAddresses = %v", cert.IPAddresses)
	}
	if err := cert.VerifyHostname("localhost"); err != nil {
		t.Errorf("VerifyHostname: %v", err)
	}

	// the certificate verifies against itself as root
	pool := x509.NewCertPool()
	pool.AddCert(cert)
	if _, err := cert.Verify(x509.VerifyOptions{Roots: pool, DNSName: "localhost"}); err != nil {
		t.Errorf("Verify: %v", err)
	}

	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil || keyBlock.Type != "EC PRIVATE KEY" {
		t.Fatalf("invalid key PEM")
	}
	if _, err := x509.ParseECPrivateKey(keyBlock.Bytes); err != nil {
		t.Errorf("parse key: %v", err)
	}
}

func TestGenerateSelfSigned_NoHosts(t *testing.T) {
	if _, _, err := GenerateSelfSigned(nil); err == nil {
		t.Fatal("expected error for empty host list")
	}
}

func TestLoadOrCreate(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "certs", "server.crt")
	keyPath := filepath.Join(dir, "certs", "server.key")

	first, created, err := LoadOrCreate(certPath, keyPath, []string{"localhost"})
	if err != nil {
		t.Fatalf("LoadOrCreate error: %v", err)
	}
	if !created {
		t.Error("expected a new key pair to be generated")
	}
	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("stat key: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("key perm = %o; want 600", perm)
	}

	second, created, err := LoadOrCreate(certPath, keyPath, []string{"localhost"})
	if err != nil {
		t.Fatalf("LoadOrCreate reload error: %v", err)
	}
	if created {
		t.Error("existing key pair should be reused")
	}
	if !reflect.DeepEqual(first.Certificate, second.Certificate) {
		t.Error("reloaded certificate differs from generated one")
	}
}

func TestLoadOrCreate_Corrupt(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "server.crt")
	keyPath := filepath.Join(dir, "server.key")
	if err := os.WriteFile(certPath, []byte("junk"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyPath, []byte("junk"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, _, err := LoadOrCreate(certPath, keyPath, []string{"localhost"}); err == nil {
		t.Fatal("expected error for corrupt key pair")
	}
}

func TestHostsFor(t *testing.T) {
	tests := []struct {
		addr string
		want []string
	}{
		{"localhost:8080", []string{"localhost", "127.0.0.1"}},
		{":8443", []string{"localhost", "127.0.0.1", "::1"}},
		{"192.168.1.5:443", []string{"192.168.1.5"}},
		{"passhash.lan", []string{"passhash.lan"}},
	}
	for _, tt := range tests {
		if got := HostsFor(tt.addr); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("HostsFor(%q) = %v; want %v", tt.addr, got, tt.want)
		}
	}
}
