package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/atinyakov/PassHash/internal/exchange"
	"github.com/atinyakov/PassHash/internal/models"
	"github.com/atinyakov/PassHash/internal/scanner"
	"github.com/atinyakov/PassHash/internal/service"
	"github.com/atinyakov/PassHash/internal/visualizer"
)

func (s *Shell) cmdAlgo(arg string) error {
	if arg == "" {
		fmt.Fprintf(s.out, "Algorithm: %s\n", s.algorithm.Label())
		names := make([]string, len(models.HashAlgorithms))
		for i, a := range models.HashAlgorithms {
			names[i] = string(a)
		}
		fmt.Fprintf(s.out, "Available: %s\n", strings.Join(names, ", "))
		return nil
	}
	alg, ok := models.ParseHashAlgorithm(arg)
	if !ok {
		return fmt.Errorf("unknown algorithm %q", arg)
	}
	s.algorithm = alg
	fmt.Fprintf(s.out, "Algorithm set to %s\n", alg.Label())
	return nil
}

func (s *Shell) cmdHash(ctx context.Context, text string) error {
	if text == "" {
		text = s.text
	}
	if text == "" {
		return errors.New("usage: hash <text>")
	}
	salt, err := s.readSecret(ctx, "Salt: ")
	if err != nil {
		return fmt.Errorf("read salt: %w", err)
	}
	s.text = text

	res := s.hashes.Derive(service.HashRequest{
		Text:          text,
		Salt:          salt,
		SecondarySalt: s.session.SecondarySalt(),
		Algorithm:     s.algorithm,
		GroupSize:     s.groupSize,
		Format:        s.display,
	})
	fmt.Fprintln(s.out, res.Formatted)
	return nil
}

func (s *Shell) cmdFormat(arg string) error {
	switch f := models.DisplayFormat(strings.ToLower(arg)); f {
	case models.FormatAll, models.FormatLetters, models.FormatNumbers:
		s.display = f
		fmt.Fprintf(s.out, "Format set to %s\n", f)
		return nil
	}
	return errors.New("usage: format <all|letters|numbers>")
}

func (s *Shell) cmdGroup(arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return errors.New("usage: group <n>, n >= 1")
	}
	s.groupSize = n
	fmt.Fprintf(s.out, "Group size set to %d\n", n)
	return nil
}

func (s *Shell) cmdGesture(kind, arg string) error {
	if arg == "" {
		return fmt.Errorf("usage: %s <input>", kind)
	}

	var w visualizer.Widget
	switch kind {
	case "keypad":
		k := &visualizer.Keypad{}
		if err := k.PressAll(arg); err != nil {
			return err
		}
		w = k
	case "pattern":
		p := &visualizer.Pattern{}
		for _, f := range splitList(arg) {
			n, err := strconv.Atoi(f)
			if err != nil || !p.Connect(n) {
				return fmt.Errorf("invalid pattern point %q", f)
			}
		}
		w = p
	case "vault":
		v := &visualizer.Vault{}
		// dial numbers run past 9, so digits are never split apart
		for _, f := range strings.FieldsFunc(arg, isListSep) {
			n, err := strconv.Atoi(f)
			if err != nil || n < 0 || n >= visualizer.VaultPositions {
				return fmt.Errorf("invalid dial number %q", f)
			}
			v.Set(n)
			v.Commit()
		}
		w = v
	}

	if err := s.session.Apply(w); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Secondary salt set (%s)\n", w.Method())
	return nil
}

func isListSep(r rune) bool { return r == ',' || r == ' ' }

// splitList accepts "0,4,8", "0 4 8" and, for single digits, "048".
func splitList(arg string) []string {
	if strings.ContainsAny(arg, ", ") {
		return strings.FieldsFunc(arg, isListSep)
	}
	out := make([]string, 0, len(arg))
	for _, r := range arg {
		out = append(out, string(r))
	}
	return out
}

func (s *Shell) cmdSave(ctx context.Context, name string) error {
	if s.text == "" {
		return errors.New("nothing to save, run hash first")
	}
	cfg, err := s.configs.Save(ctx, models.NewConfig{
		Name:                name,
		Text:                s.text,
		Algorithm:           s.algorithm,
		VisualizationMethod: s.session.Method(),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Saved %q with id %s\n", cfg.Name, cfg.ID)
	return nil
}

func (s *Shell) cmdList(ctx context.Context) error {
	configs, err := s.configs.List(ctx)
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		fmt.Fprintln(s.out, "No saved configurations")
		return nil
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTEXT\tALGORITHM\tMETHOD\tSAVED")
	for _, c := range configs {
		saved := time.UnixMilli(c.Timestamp).Format("2006-01-02 15:04")
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Text, c.Algorithm.Label(), c.VisualizationMethod, saved)
	}
	return tw.Flush()
}

func (s *Shell) cmdLoad(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("usage: load <id>")
	}
	cfg, err := s.configs.Get(ctx, id)
	if err != nil {
		return err
	}
	s.text = cfg.Text
	s.algorithm = cfg.Algorithm
	s.session.Clear()
	fmt.Fprintf(s.out, "Loaded %q: text %q, %s, enter the %s gesture\n", cfg.Name, cfg.Text, cfg.Algorithm.Label(), cfg.VisualizationMethod)
	return nil
}

func (s *Shell) cmdDelete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("usage: delete <id>")
	}
	removed, err := s.configs.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintln(s.out, "Configuration not found")
		return nil
	}
	fmt.Fprintln(s.out, "Configuration deleted")
	return nil
}

func (s *Shell) cmdExport(ctx context.Context, path string) error {
	if path == "" {
		path = exchange.ExportFileName(s.now())
	}
	data, err := s.configs.ExportAll(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(s.out, "Exported to %s\n", path)
	return nil
}

func (s *Shell) cmdImport(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("usage: import <file>")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}
	added, err := s.configs.ImportAll(ctx, string(data))
	if errors.Is(err, exchange.ErrInvalidPayload) {
		return errors.New("invalid file format")
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Imported %d configuration(s)\n", added)
	return nil
}

func (s *Shell) cmdQR(ctx context.Context) error {
	payload, err := s.configs.ExportCompressed(ctx)
	if errors.Is(err, exchange.ErrPayloadTooLarge) {
		return errors.New("too many configurations for one QR code, use export instead")
	}
	if err != nil {
		return err
	}
	code, err := exchange.RenderQRText(payload)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, code)
	fmt.Fprintln(s.out, payload)
	return nil
}

// keepOpen lets a scan use the shell input without closing it.
type keepOpen struct{ *scanner.LineSource }

func (keepOpen) Close() error { return nil }

func (s *Shell) cmdScan(ctx context.Context) error {
	fmt.Fprintln(s.out, "Paste the QR code text:")

	var added int
	err := s.scanner.Scan(ctx, keepOpen{s.in}, func(payload string) error {
		n, err := s.configs.ImportCompressed(ctx, payload)
		added = n
		return err
	})
	switch {
	case errors.Is(err, exchange.ErrInvalidPayload):
		return errors.New("invalid QR code data")
	case err != nil:
		return errors.New(scanner.Describe(err))
	}
	fmt.Fprintf(s.out, "Imported %d configuration(s)\n", added)
	return nil
}
