package sqlstore

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Person is a row of the people table.
type Person struct {
	ID       string `yaml:"id,omitempty"`
	Name     string `yaml:"name"`
	JobTitle string `yaml:"jobTitle,omitempty"`
	Company  string `yaml:"company,omitempty"`
	Address  string `yaml:"address,omitempty"`
	Email    string `yaml:"email,omitempty"`
	Phone    string `yaml:"phone,omitempty"`
	Image    string `yaml:"image,omitempty"`
}

// Document is a row of the documents table. Text usually reads
// "Name - Description".
type Document struct {
	ID       string `yaml:"id,omitempty"`
	Text     string `yaml:"text"`
	Name     string `yaml:"name,omitempty"`
	Phone    string `yaml:"phone,omitempty"`
	Location string `yaml:"location,omitempty"`
}

// Fixture is the seed file layout.
type Fixture struct {
	People    []Person   `yaml:"people"`
	Documents []Document `yaml:"documents"`
}

// LoadFixture reads a YAML seed file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Seed inserts (or replaces, by id) every row of f in one transaction and
// returns the number of rows written.
func (s *Store) Seed(ctx context.Context, f *Fixture) (int, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := millis(s.now())
	n := 0
	for _, p := range f.People {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO people
			(id, name, job_title, company, address, email, phone, image, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.JobTitle, p.Company, p.Address, p.Email, p.Phone, p.Image, now+int64(n)); err != nil {
			return 0, fmt.Errorf("insert person %q: %w", p.Name, err)
		}
		n++
	}
	for _, d := range f.Documents {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO documents
			(id, text, name, phone, location, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			d.ID, d.Text, d.Name, d.Phone, d.Location, now+int64(n)); err != nil {
			return 0, fmt.Errorf("insert document %q: %w", d.Text, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return n, nil
}
