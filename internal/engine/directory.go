package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/tartampluch/go-birthday-web/internal/config"
)

// DirectorySource names optional places to read extra authors from.
// Both may be empty, in which case only the built-in authors are served.
type DirectorySource struct {
	LocalPath string // Path to a .vcf file
	WebURL    string // http(s) URL of a vCard stream
	WebUser   string // HTTP Basic Auth Username
	WebPass   string // HTTP Basic Auth Password
}

// LoadDirectory builds the author directory from the defaults plus any configured sources.
// Built-in authors always win over loaded ones sharing the same key.
func LoadDirectory(ctx context.Context, src DirectorySource, fetcher VCardFetcher) (*Directory, error) {
	authors := DefaultAuthors()
	builtin := NewDirectory(authors...)

	if src.LocalPath != "" {
		loaded, err := loadLocal(src.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrDirectoryLoad, err)
		}
		authors = append(authors, withoutDuplicates(builtin, loaded)...)
	}

	if src.WebURL != "" {
		loaded, err := loadRemote(ctx, src, fetcher)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%s: %w", config.ErrDirectoryLoad, err)
		}
		authors = append(authors, withoutDuplicates(builtin, loaded)...)
	}

	dir := NewDirectory(authors...)
	slog.InfoContext(ctx, config.MsgDirectoryLoaded,
		config.LogKeyComponent, config.CompDirectory,
		config.LogKeyCount, dir.Len())
	return dir, nil
}

func loadLocal(path string) ([]Author, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDirectoryOpen, err)
	}
	defer func() { _ = f.Close() }()
	return DecodeAuthors(f)
}

func loadRemote(ctx context.Context, src DirectorySource, fetcher VCardFetcher) ([]Author, error) {
	if fetcher == nil {
		return nil, errors.New(config.ErrFetcherMissing)
	}
	body, err := fetcher.Fetch(ctx, src.WebURL, src.WebUser, src.WebPass)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()
	return DecodeAuthors(body)
}

func withoutDuplicates(builtin *Directory, loaded []Author) []Author {
	out := loaded[:0]
	for _, a := range loaded {
		if _, exists := builtin.Lookup(a.Key); exists {
			slog.Debug(config.MsgSkippedDup,
				config.LogKeyComponent, config.CompDirectory,
				config.LogKeyKey, a.Key)
			continue
		}
		out = append(out, a)
	}
	return out
}
