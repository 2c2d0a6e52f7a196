// Package template renders Dockerfile templates. Rendering is a pure
// string transformation: text plus a variable map in, text out.
package template

import (
	"bytes"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/rs/zerolog/log"
)

func RenderString(pattern string, args map[string]interface{}) (string, error) {
	t, err := template.New(pattern).Funcs(sprig.TxtFuncMap()).Parse(pattern)
	if err != nil {
		return "", err
	}
	var output bytes.Buffer
	if err := t.Execute(&output, args); err != nil {
		return "", err
	}
	return output.String(), nil
}

// RenderFile renders templateFile into destinationFile, overwriting it.
func RenderFile(templateFile string, destinationFile string, args map[string]interface{}) error {
	t, err := template.New(filepath.Base(templateFile)).Funcs(sprig.TxtFuncMap()).ParseFiles(templateFile)
	if err != nil {
		log.Error().Err(err).Str("file", templateFile).Msg("Failed to parse")
		return err
	}

	f, err := os.Create(destinationFile)
	if err != nil {
		log.Error().Err(err).Str("file", destinationFile).Msg("Failed to create")
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing rendered file")
		}
	}()

	if err := t.Execute(f, args); err != nil {
		log.Error().Err(err).Str("file", templateFile).Msg("Failed to template")
		return err
	}

	return nil
}
