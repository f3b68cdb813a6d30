package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmgilman/objfs"
	"github.com/jmgilman/objfs/errors"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func checkOutput(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	}
	return errors.Newf(errors.CodeInvalidInput, "unknown output format %q (want text, json or yaml)", format)
}

// print renders v in the configured format. text is used for the text
// format.
func (a *app) print(v interface{}, text func(w io.Writer) error) error {
	switch a.cfg.Output {
	case outputJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(a.out)
		defer func() { _ = enc.Close() }()
		return enc.Encode(v)
	default:
		return text(a.out)
	}
}

func (a *app) printItems(items []objfs.Item) error {
	return a.print(items, func(w io.Writer) error {
		for _, it := range items {
			if _, err := fmt.Fprintln(w, it.Identifier); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *app) printInfo(info *objfs.FileInfo) error {
	return a.print(info, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			info.Identifier, info.Size, info.MimeType, info.ModTime.Format("2006-01-02T15:04:05Z07:00"))
		return err
	})
}

func (a *app) printValue(key string, value interface{}) error {
	return a.print(map[string]interface{}{key: value}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, value)
		return err
	})
}

func (a *app) printMap(m objfs.IdentityMap) error {
	return a.print(m, func(w io.Writer) error {
		for _, e := range m {
			if _, err := fmt.Fprintf(w, "%s -> %s\n", e.From, e.To); err != nil {
				return err
			}
		}
		return nil
	})
}
