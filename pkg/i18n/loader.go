package i18n

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// WithYAMLDir loads translations from YAML files in fsys.
// File convention: {lang}/{namespace}.yaml (or .yml); keys are prefixed with the namespace.
//
//	en/common.yaml   -> common.welcome
//	de/errors.yml    -> errors.not_found
func WithYAMLDir(fsys fs.FS) Option {
	return func(b *Bundle) error {
		return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			ext := strings.ToLower(path.Ext(p))
			if ext != ".yaml" && ext != ".yml" {
				return nil
			}

			dir := path.Dir(p)
			if dir == "." {
				return fmt.Errorf("%w: file %q must be inside a language directory", ErrInvalidFile, p)
			}

			data, err := fs.ReadFile(fsys, p)
			if err != nil {
				return fmt.Errorf("i18n: read %q: %w", p, err)
			}
			var messages map[string]any
			if err := yaml.Unmarshal(data, &messages); err != nil {
				return fmt.Errorf("%w: parse %q: %w", ErrInvalidFile, p, err)
			}

			namespace := strings.TrimSuffix(path.Base(p), path.Ext(p))
			return b.add(path.Base(dir), namespace, messages)
		})
	}
}
