package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// Country is a selectable dialing code for the phone prompt.
type Country struct {
	Code    string `yaml:"code"`
	Name    string `yaml:"name"`
	Default bool   `yaml:"default"`
}

type CountriesConfig struct {
	Countries []Country `yaml:"countries"`
}

// DefaultCountries is used when no countries file is configured.
func DefaultCountries() []Country {
	return []Country{
		{Code: "+91", Name: "India", Default: true},
		{Code: "+1", Name: "USA"},
		{Code: "+44", Name: "UK"},
	}
}

// LoadCountries reads the country list from a YAML file. An empty path
// returns DefaultCountries.
func LoadCountries(countriesFile string) ([]Country, error) {
	if countriesFile == "" {
		return DefaultCountries(), nil
	}

	var countriesPath string
	if filepath.IsAbs(countriesFile) {
		countriesPath = countriesFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		countriesPath = filepath.Join(wd, countriesFile)
	}

	data, err := os.ReadFile(countriesPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", countriesFile, err)
	}

	var config CountriesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", countriesFile, err)
	}
	if len(config.Countries) == 0 {
		return nil, fmt.Errorf("%s lists no countries", countriesFile)
	}

	defaults := 0
	for i, country := range config.Countries {
		if !strings.HasPrefix(country.Code, "+") || len(country.Code) < 2 {
			return nil, fmt.Errorf("country at index %d has invalid code %q", i, country.Code)
		}
		if country.Name == "" {
			return nil, fmt.Errorf("country at index %d missing name", i)
		}
		if country.Default {
			defaults++
		}
	}
	if defaults > 1 {
		return nil, fmt.Errorf("%s marks %d countries as default", countriesFile, defaults)
	}

	return config.Countries, nil
}

// DefaultCountry returns the country marked default, else the first one.
func DefaultCountry(countries []Country) Country {
	for _, c := range countries {
		if c.Default {
			return c
		}
	}
	if len(countries) == 0 {
		return DefaultCountries()[0]
	}
	return countries[0]
}

// FindCountry matches a dialing code, with or without the leading "+".
func FindCountry(countries []Country, code string) (Country, bool) {
	if !strings.HasPrefix(code, "+") {
		code = "+" + code
	}
	for _, c := range countries {
		if c.Code == code {
			return c, true
		}
	}
	return Country{}, false
}

// FullPhoneNumber joins a dialing code and the local digits, dropping
// spaces and dashes the user may have typed.
func FullPhoneNumber(country Country, local string) string {
	digits := strings.NewReplacer(" ", "", "-", "").Replace(local)
	return country.Code + digits
}
