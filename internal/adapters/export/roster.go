package export

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/furniture-factory/internal/application/enterprise"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
)

// Format is a roster encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, xml, yaml or yml
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported export format: %s", s)
}

// Employee is one roster line
type Employee struct {
	ID       string `json:"id" xml:"id,attr" yaml:"id"`
	Name     string `json:"name" xml:"name" yaml:"name"`
	Role     string `json:"role" xml:"role" yaml:"role"`
	Produced int    `json:"produced,omitempty" xml:"produced,omitempty" yaml:"produced,omitempty"`
	Repaired int    `json:"repaired,omitempty" xml:"repaired,omitempty" yaml:"repaired,omitempty"`
	Salary   string `json:"salary" xml:"salary" yaml:"salary"`
}

// Roster is the exported payroll, each list sorted by salary, highest first
type Roster struct {
	XMLName     xml.Name   `json:"-" xml:"roster" yaml:"-"`
	GeneratedAt time.Time  `json:"generated_at" xml:"generatedAt,attr" yaml:"generated_at"`
	Budget      string     `json:"budget" xml:"budget" yaml:"budget"`
	Carpenters  []Employee `json:"carpenters" xml:"carpenters>employee" yaml:"carpenters"`
	Repairmen   []Employee `json:"repairmen" xml:"repairmen>employee" yaml:"repairmen"`
}

// FromSnapshot builds the roster document
func FromSnapshot(snap enterprise.Snapshot) Roster {
	r := Roster{
		GeneratedAt: snap.TakenAt,
		Budget:      snap.Budget.Current.String(),
		Carpenters:  []Employee{},
		Repairmen:   []Employee{},
	}
	for _, s := range snap.Roster() {
		e := Employee{
			ID:       s.ID,
			Name:     s.Name,
			Role:     string(s.Role),
			Produced: s.Produced,
			Repaired: s.Repaired,
			Salary:   s.Salary.StringFixed(2),
		}
		if s.Role == factory.RoleRepairman {
			r.Repairmen = append(r.Repairmen, e)
		} else {
			r.Carpenters = append(r.Carpenters, e)
		}
	}
	return r
}

// Encode writes r to w in the given format
func Encode(w io.Writer, r Roster, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatXML:
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(r); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported export format: %s", format)
}

// WriteFiles writes roster.<format> for each format into dir and returns the paths
func WriteFiles(dir string, r Roster, formats []Format) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := filepath.Join(dir, "roster."+string(format))
		if err := writeFile(path, r, format); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, r Roster, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(f, r, format); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
