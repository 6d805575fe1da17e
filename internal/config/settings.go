package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Settings holds the runtime options supplied on the command line.
type Settings struct {
	ShowVersion bool
	Debug       bool
	Bind        string
	Port        string
	Language    string

	// Optional sources of extra authors, merged into the built-in directory at start.
	AuthorsFile string
	AuthorsURL  string
	AuthorsUser string

	// SetPassword stores the -authors-user password read from stdin instead of serving.
	SetPassword bool
}

// Addr returns the listen address for the HTTP server.
func (s Settings) Addr() string {
	return s.Bind + AddrSeparator + s.Port
}

// ParseFlags parses args (without the program name) into Settings.
// Usage output and flag errors are written to out.
func ParseFlags(name string, args []string, out io.Writer) (Settings, error) {
	var s Settings

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.BoolVar(&s.ShowVersion, FlagVersion, false, FlagDescVersion)
	fs.BoolVar(&s.Debug, FlagDebug, false, FlagDescDebug)
	fs.StringVar(&s.Bind, FlagBind, LocalhostBindAddr, FlagDescBind)
	fs.StringVar(&s.Port, FlagPort, DefaultPort, FlagDescPort)
	fs.StringVar(&s.Language, FlagLang, DefaultLanguage, FlagDescLang)
	fs.StringVar(&s.AuthorsFile, FlagAuthorsFile, "", FlagDescAuthorsFile)
	fs.StringVar(&s.AuthorsURL, FlagAuthorsURL, "", FlagDescAuthorsURL)
	fs.StringVar(&s.AuthorsUser, FlagAuthorsUser, "", FlagDescAuthorsUser)
	fs.BoolVar(&s.SetPassword, FlagSetPassword, false, FlagDescSetPassword)

	if err := fs.Parse(args); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrFlagParse, err)
	}
	if s.ShowVersion {
		return s, nil
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the port range, the default language and the author sources.
func (s Settings) Validate() error {
	if s.SetPassword && s.AuthorsUser == "" {
		return errors.New(ErrUserRequired)
	}
	if err := ValidatePort(s.Port); err != nil {
		return err
	}
	if !slices.Contains(SupportedLanguages, s.Language) {
		return fmt.Errorf("%s: %q", ErrLanguage, s.Language)
	}
	if s.AuthorsFile != "" && !slices.Contains(VCardExtensions, strings.ToLower(filepath.Ext(s.AuthorsFile))) {
		return fmt.Errorf("%s: %q", ErrAuthorsFileExt, s.AuthorsFile)
	}
	if s.AuthorsUser != "" && s.AuthorsURL == "" && !s.SetPassword {
		return errors.New(ErrWebURLEmpty)
	}
	return nil
}

// ValidatePort ensures port is a number within 1-65535.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if p < MinPort || p > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}
