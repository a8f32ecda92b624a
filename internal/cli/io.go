package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/kacl/internal/build"
	"github.com/ariel-frischer/kacl/internal/changelog"
	clierrors "github.com/ariel-frischer/kacl/internal/errors"
)

// targetAt returns args[i] when present and the configured changelog file
// otherwise.
func targetAt(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return appConfig.File
}

func parseOptions() []changelog.ParseOption {
	return []changelog.ParseOption{changelog.WithEncoding(appConfig.Encoding)}
}

func formatOptions() changelog.FormatOptions {
	return changelog.FormatOptions{Plain: appConfig.Plain}
}

// loadChangelog parses the changelog at location, a file path or an http(s)
// URL. Failures come back as CLI errors ready for display.
func loadChangelog(ctx context.Context, location string) (*changelog.Changelog, error) {
	if changelog.IsRemote(location) {
		log.Printf("[fetch] debug: GET %s (timeout %s)", location, appConfig.RemoteTimeout)
		c, err := changelog.FetchRemote(ctx, location,
			changelog.WithTimeout(appConfig.RemoteTimeout),
			changelog.WithUserAgent(build.UserAgent()),
			changelog.WithParseOptions(parseOptions()...),
		)
		if err != nil {
			if changelog.IsParsingError(err) {
				return nil, clierrors.FromParsingError(location, err)
			}
			return nil, clierrors.RemoteFetchFailed(location, err)
		}
		return c, nil
	}

	log.Printf("[parse] debug: loading %s", location)
	c, err := changelog.Load(location, parseOptions()...)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, clierrors.ChangelogNotFound(location)
		}
		return nil, clierrors.FromParsingError(location, err)
	}
	return c, nil
}

// loadLocalChangelog is loadChangelog for commands that write the file back.
func loadLocalChangelog(ctx context.Context, location string) (*changelog.Changelog, error) {
	if changelog.IsRemote(location) {
		return nil, clierrors.NewArgumentError(
			fmt.Sprintf("%s is a URL; this command only works on local files", location),
			"Download the file first, or run 'kacl validate' for remote changelogs",
		)
	}
	return loadChangelog(ctx, location)
}

// serializeOptions applies the configured header file, if any.
func serializeOptions(headerFile string) ([]changelog.SerializeOption, error) {
	if headerFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(headerFile)
	if err != nil {
		return nil, clierrors.WrapWithMessage(err, clierrors.Configuration,
			fmt.Sprintf("reading header file %s", headerFile),
			"Set \"header_file\" to an existing Markdown file, or clear it to use the default header",
		)
	}
	return []changelog.SerializeOption{changelog.WithHeader(strings.TrimRight(string(data), "\n"))}, nil
}

func renderChangelog(c *changelog.Changelog) (string, error) {
	opts, err := serializeOptions(appConfig.HeaderFile)
	if err != nil {
		return "", err
	}
	out, err := changelog.SerializeString(c, opts...)
	if err != nil {
		return "", clierrors.Wrap(err, clierrors.Runtime)
	}
	return out, nil
}

// writeFileAtomic replaces path with content through a temp file in the same
// directory, keeping the original file mode.
func writeFileAtomic(path string, content []byte) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return clierrors.FileNotWritable(path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return clierrors.FileNotWritable(path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return clierrors.FileNotWritable(path, err)
	}
	if err := tmp.Close(); err != nil {
		return clierrors.FileNotWritable(path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return clierrors.FileNotWritable(path, err)
	}
	log.Printf("[write] debug: wrote %d bytes to %s", len(content), path)
	return nil
}

// encodeChangelog converts rendered Markdown to the configured file
// encoding, so files are written back the way they were read.
func encodeChangelog(path, text string) ([]byte, error) {
	out, err := changelog.Encode(text, appConfig.Encoding)
	if err != nil {
		return nil, clierrors.ChangelogNotEncodable(path, appConfig.Encoding, err)
	}
	return out, nil
}

// writeChangelogText encodes text and writes it to path.
func writeChangelogText(path, text string) error {
	out, err := encodeChangelog(path, text)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, out)
}

// writeChangelog serializes c into path.
func writeChangelog(path string, c *changelog.Changelog) error {
	out, err := renderChangelog(c)
	if err != nil {
		return err
	}
	return writeChangelogText(path, out)
}
