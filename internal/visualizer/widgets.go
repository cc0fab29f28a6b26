package visualizer

import (
	"errors"
	"strconv"
	"strings"

	"github.com/atinyakov/PassHash/internal/models"
)

// ErrInvalidKey is returned when a key is not on the keypad.
var ErrInvalidKey = errors.New("visualizer: invalid key")

// KeypadKeys is the phone style layout, row by row.
var KeypadKeys = [4][3]string{
	{"1", "2", "3"},
	{"4", "5", "6"},
	{"7", "8", "9"},
	{"*", "0", "#"},
}

// Keypad records key presses; its salt is the pressed keys in order.
type Keypad struct {
	input strings.Builder
}

func (k *Keypad) Method() models.VisualizationMethod { return models.Keypad }

// Press appends key. Only keys on the layout are accepted.
func (k *Keypad) Press(key string) error {
	for _, row := range KeypadKeys {
		for _, valid := range row {
			if key == valid {
				k.input.WriteString(key)
				return nil
			}
		}
	}
	return ErrInvalidKey
}

// PressAll presses every character of keys, stopping at the first
// invalid one.
func (k *Keypad) PressAll(keys string) error {
	for _, r := range keys {
		if err := k.Press(string(r)); err != nil {
			return err
		}
	}
	return nil
}

func (k *Keypad) Salt() string { return k.input.String() }

func (k *Keypad) Reset() { k.input.Reset() }

// PatternGridSize is the edge of the square pattern grid.
const PatternGridSize = 3

// Pattern is an unlock pattern on a 3x3 grid. Points are numbered row by
// row from 0 to 8 and each point can be visited once.
type Pattern struct {
	points []int
}

func (p *Pattern) Method() models.VisualizationMethod { return models.AndroidPattern }

// Connect adds point to the pattern. It reports false, leaving the pattern
// unchanged, for out-of-range or already visited points.
func (p *Pattern) Connect(point int) bool {
	if point < 0 || point >= PatternGridSize*PatternGridSize {
		return false
	}
	for _, v := range p.points {
		if v == point {
			return false
		}
	}
	p.points = append(p.points, point)
	return true
}

// PointAt returns the point index at grid column x and row y.
func PointAt(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= PatternGridSize || y >= PatternGridSize {
		return 0, false
	}
	return y*PatternGridSize + x, true
}

// Points returns a copy of the visited points.
func (p *Pattern) Points() []int {
	return append([]int(nil), p.points...)
}

func (p *Pattern) Salt() string {
	var b strings.Builder
	for _, v := range p.points {
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

func (p *Pattern) Reset() { p.points = nil }

// VaultPositions is the number of positions on the combination dial.
const VaultPositions = 36

// Vault is a rotary combination dial. Turning moves the current number;
// Commit records it as the next number of the combination.
type Vault struct {
	current     int
	combination []int
}

func (v *Vault) Method() models.VisualizationMethod { return models.BankVault }

// Turn rotates the dial by steps positions; negative steps turn the other
// way. The result wraps around the dial.
func (v *Vault) Turn(steps int) {
	v.current = ((v.current+steps)%VaultPositions + VaultPositions) % VaultPositions
}

// Set moves the dial straight to n, wrapping out-of-range values.
func (v *Vault) Set(n int) {
	v.current = 0
	v.Turn(n)
}

// Current returns the number under the marker.
func (v *Vault) Current() int { return v.current }

// Commit appends the current number to the combination.
func (v *Vault) Commit() {
	v.combination = append(v.combination, v.current)
}

// Combination returns a copy of the committed numbers.
func (v *Vault) Combination() []int {
	return append([]int(nil), v.combination...)
}

func (v *Vault) Salt() string {
	parts := make([]string, len(v.combination))
	for i, n := range v.combination {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "-")
}

func (v *Vault) Reset() {
	v.current = 0
	v.combination = nil
}
