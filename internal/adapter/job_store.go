package adapter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	m "keepgen.dev/pkg/keepgen/internal/model"
)

var (
	// ErrInvalidJob is returned for job files without a generate.template entry.
	ErrInvalidJob = errors.New("invalid job file")
	// ErrUnsupportedFormat is returned for job or context files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// JobStore loads generation requests and template contexts from disk.
type JobStore interface {
	// LoadJob reads a job file with a generate and a context section.
	LoadJob(path m.Path) (m.Job, error)

	// LoadContext reads a file holding only template context values.
	LoadContext(path m.Path) (map[string]any, error)
}

type jobFile struct {
	Generate *jobGenerate   `yaml:"generate" toml:"generate" validate:"required"`
	Context  map[string]any `yaml:"context" toml:"context"`
}

type jobGenerate struct {
	Template string `yaml:"template" toml:"template" validate:"required"`
	DestPath string `yaml:"destpath" toml:"destpath"`
	Filename string `yaml:"filename" toml:"filename" validate:"omitempty,ne=.,ne=.."`
	Protect  *bool  `yaml:"protsect" toml:"protsect"`
}

// LocalJobStore decodes JSON and YAML files with yaml.v3 and TOML files with
// BurntSushi/toml, picking the decoder from the file extension, and checks
// the decoded job with go-playground/validator.
type LocalJobStore struct {
	validate *validator.Validate
}

// NewLocalJobStore constructs a LocalJobStore.
func NewLocalJobStore() *LocalJobStore {
	v := validator.New()

	// Report fields under their job file keys (generate.template, not Generate.Template).
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return &LocalJobStore{validate: v}
}

// LoadJob reads and validates a job file.
func (s *LocalJobStore) LoadJob(path m.Path) (m.Job, error) {
	var file jobFile
	if err := decodeFile(path, &file); err != nil {
		return m.Job{}, err
	}

	if file.Generate != nil {
		file.Generate.Template = strings.TrimSpace(file.Generate.Template)
	}

	if err := s.validateJob(path, &file); err != nil {
		return m.Job{}, err
	}

	ctx := file.Context
	if ctx == nil {
		ctx = map[string]any{}
	}

	return m.Job{
		Source:    path,
		Template:  file.Generate.Template,
		DestPath:  file.Generate.DestPath,
		Filename:  file.Generate.Filename,
		Protected: file.Generate.Protect,
		Context:   ctx,
	}, nil
}

func (s *LocalJobStore) validateJob(path m.Path, file *jobFile) error {
	err := s.validate.Struct(file)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w %s: %w", ErrInvalidJob, path, err)
	}

	problems := make([]string, 0, len(fieldErrs))

	for _, fieldErr := range fieldErrs {
		// Namespace starts with the struct name: jobFile.generate.template.
		_, field, _ := strings.Cut(fieldErr.Namespace(), ".")

		switch fieldErr.Tag() {
		case "required":
			problems = append(problems, field+" is required")
		case "ne":
			problems = append(problems, fmt.Sprintf("%s must not be %q", field, fieldErr.Param()))
		default:
			problems = append(problems, fmt.Sprintf("%s fails %s", field, fieldErr.Tag()))
		}
	}

	return fmt.Errorf("%w %s: %s", ErrInvalidJob, path, strings.Join(problems, "; "))
}

// LoadContext reads a plain map of template values.
func (s *LocalJobStore) LoadContext(path m.Path) (map[string]any, error) {
	ctx := map[string]any{}
	if err := decodeFile(path, &ctx); err != nil {
		return nil, err
	}

	return ctx, nil
}

func decodeFile(path m.Path, out any) error {
	// #nosec G304 - job files are named by the user on the command line
	data, err := os.ReadFile(string(path))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(string(path))); ext {
	case ".json", ".yaml", ".yml":
		// JSON is valid YAML; one decoder keeps value shapes identical for both.
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}

		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %s (%q)", ErrUnsupportedFormat, path, ext)
	}

	return nil
}
