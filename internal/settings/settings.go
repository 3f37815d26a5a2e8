// Package settings persists the dashboard's user settings (API base URL
// and data source) in a dotenv-format file. Data is stored in
// ~/.homedash/settings.env unless another path is given.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	dirName  = ".homedash"
	fileName = "settings.env"

	keyAPIBase = "HOMEDASH_API_BASE"
	keyUseLive = "HOMEDASH_USE_LIVE"
)

// DefaultAPIBase is used when no API base has been saved.
const DefaultAPIBase = "http://localhost:8000"

// ErrEmptyAPIBase is returned when saving a blank API base URL.
var ErrEmptyAPIBase = errors.New("api base url must not be empty")

// Settings are the user-adjustable dashboard settings.
type Settings struct {
	APIBase string
	UseLive bool
}

// Defaults returns the settings used when nothing has been saved.
func Defaults() Settings {
	return Settings{APIBase: DefaultAPIBase}
}

// File is a settings file on disk.
type File struct {
	path string
}

// Open returns the settings file at path, or the default location when
// path is empty.
func Open(path string) (*File, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot find home dir: %w", err)
		}
		path = filepath.Join(home, dirName, fileName)
	}
	return &File{path: path}, nil
}

// Path returns the location of the file.
func (f *File) Path() string {
	return f.path
}

// Load reads the saved settings. A missing file, blank API base or
// unparsable flag falls back to the defaults for that key.
func (f *File) Load() (Settings, error) {
	s := Defaults()
	values, err := godotenv.Read(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}

	if v := strings.TrimSpace(values[keyAPIBase]); v != "" {
		s.APIBase = v
	}
	if v, err := strconv.ParseBool(values[keyUseLive]); err == nil {
		s.UseLive = v
	}
	return s, nil
}

// Save writes s, creating the parent directory if needed.
func (f *File) Save(s Settings) error {
	if strings.TrimSpace(s.APIBase) == "" {
		return ErrEmptyAPIBase
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("cannot create settings dir: %w", err)
	}
	return godotenv.Write(map[string]string{
		keyAPIBase: strings.TrimSpace(s.APIBase),
		keyUseLive: strconv.FormatBool(s.UseLive),
	}, f.path)
}
