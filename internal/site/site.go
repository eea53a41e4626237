// Package site holds the institute's static profile: contact details,
// teachers, board results and the selling points shown on the home page.
package site

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed institute.toml
var defaultData string

type Institute struct {
	Name             string `toml:"name"`
	Slogan           string `toml:"slogan"`
	Tagline          string `toml:"tagline"`
	Phone            string `toml:"phone"`
	WhatsApp         string `toml:"whatsapp"`
	AdmissionFormURL string `toml:"admission_form_url"`
	MapsURL          string `toml:"maps_url"`
	CurrentYear      int    `toml:"current_year"`
	AdmissionSession string `toml:"admission_session"`
}

// WhatsAppURL is the click-to-chat link for the institute's number.
func (i Institute) WhatsAppURL() string {
	return "https://wa.me/91" + i.WhatsApp
}

type Teacher struct {
	ID            string `toml:"id"`
	Name          string `toml:"name"`
	Subject       string `toml:"subject"`
	Qualification string `toml:"qualification"`
	Experience    string `toml:"experience"`
}

type Highlight struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

type Data struct {
	Institute Institute   `toml:"institute"`
	Teachers  []Teacher   `toml:"teachers"`
	Results   Results     `toml:"results"`
	Features  []Highlight `toml:"features"`
	Mediums   []Highlight `toml:"mediums"`
}

// Default returns the embedded profile. The document is compiled in, so a
// decode failure is a build defect.
func Default() *Data {
	d, err := Parse(defaultData)
	if err != nil {
		panic(fmt.Sprintf("site: embedded data: %v", err))
	}
	return d
}

// Parse decodes a profile document, rejecting keys it does not know.
func Parse(doc string) (*Data, error) {
	var d Data
	md, err := toml.Decode(doc, &d)
	if err != nil {
		return nil, fmt.Errorf("decode site data: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("decode site data: unknown keys %s", strings.Join(keys, ", "))
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Data) Validate() error {
	var errs []error
	if d.Institute.Name == "" {
		errs = append(errs, errors.New("institute name is required"))
	}
	seen := make(map[string]bool)
	for _, t := range d.Teachers {
		if t.ID == "" || seen[t.ID] {
			errs = append(errs, fmt.Errorf("teacher %q: missing or duplicate id", t.Name))
		}
		seen[t.ID] = true
	}
	for _, r := range d.Results {
		if r.Percentage < 0 || r.Percentage > 100 {
			errs = append(errs, fmt.Errorf("result %s: percentage %.1f out of range", r.ID, r.Percentage))
		}
		if r.Year == "" {
			errs = append(errs, fmt.Errorf("result %s: year is required", r.ID))
		}
	}
	return errors.Join(errs...)
}
