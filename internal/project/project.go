package project

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/piwi3910/runaround/internal/log"
	"github.com/piwi3910/runaround/internal/model"
)

// FileExtension is appended to project files saved from the editor.
const FileExtension = ".runaround.json"

//go:embed schema.json
var projectSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(projectSchema)

// ValidationError lists every schema violation found in a project file.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid project file: " + strings.Join(e.Problems, "; ")
}

// SaveProject writes p to path as indented JSON. The file is written to a
// temporary sibling first and renamed over the target.
func SaveProject(path string, p model.Project) error {
	p = p.Clone()
	normalize(&p)
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	data = append(data, '\n')

	return writeFileAtomic(path, data)
}

// writeFileAtomic writes data to a temporary sibling of path and renames it
// over the target, so readers never see a half-written file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%s %s: %w", step, filepath.Base(path), err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Close(); err != nil {
		return fail("write", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fail("write", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fail("replace", err)
	}
	return nil
}

// LoadProject reads and validates a project file.
func LoadProject(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("read project: %w", err)
	}
	p, err := DecodeProject(data)
	if err != nil {
		return model.Project{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// DecodeProject validates data against the project schema and decodes it.
//
// Stored points are checked again after decoding: a polyline that is not a
// clean orthogonal path is cleared so the next recompute regenerates it.
func DecodeProject(data []byte) (model.Project, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return model.Project{}, fmt.Errorf("parse project: %w", err)
	}
	if !result.Valid() {
		verr := &ValidationError{}
		for _, e := range result.Errors() {
			verr.Problems = append(verr.Problems, e.String())
		}
		return model.Project{}, verr
	}

	var p model.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Project{}, fmt.Errorf("decode project: %w", err)
	}
	applyDefaults(&p)

	logger := log.WithComponent("project")
	for i := range p.Paths {
		row := &p.Paths[i]
		if len(row.Points) == 0 {
			continue
		}
		if err := ValidatePoints(row.Points); err != nil {
			logger.Warn("discarding stored route",
				slog.String("path", row.ID),
				slog.String("reason", err.Error()))
			row.Points = []float64{}
			row.IsManuallyEdited = false
		}
	}
	return p, nil
}

// Point validation failures.
var (
	ErrOddCoordinates = errors.New("odd number of coordinates")
	ErrTooFewPoints   = errors.New("fewer than two vertices")
	ErrDiagonal       = errors.New("diagonal segment")
	ErrDegenerate     = errors.New("repeated vertex")
)

// ValidatePoints checks that a flat polyline has at least two vertices, only
// axis-aligned segments and no repeated consecutive vertices.
func ValidatePoints(points []float64) error {
	if len(points)%2 != 0 {
		return ErrOddCoordinates
	}
	if len(points) < 4 {
		return ErrTooFewPoints
	}
	pts := model.FlatToPoints(points)
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		if a == b {
			return fmt.Errorf("%w at vertex %d", ErrDegenerate, i)
		}
		if a.X != b.X && a.Y != b.Y {
			return fmt.Errorf("%w at vertex %d", ErrDiagonal, i)
		}
	}
	return nil
}

// applyDefaults fills optional fields that older files omit.
func applyDefaults(p *model.Project) {
	defaults := model.NewProject()
	if p.OverlapSpacing == 0 {
		p.OverlapSpacing = defaults.OverlapSpacing
	}
	if p.PathThickness == 0 {
		p.PathThickness = defaults.PathThickness
	}
	if p.RectFontSize == 0 {
		p.RectFontSize = defaults.RectFontSize
	}
	p.SetOverlapSpacing(p.OverlapSpacing)
	p.SetPathThickness(p.PathThickness)
	p.SetRectFontSize(p.RectFontSize)
	for i := range p.Rects {
		if p.Rects[i].Color == "" {
			p.Rects[i].Color = model.DefaultRectColor
		}
	}
	normalize(p)
}

// normalize replaces nil slices so the file always carries arrays.
func normalize(p *model.Project) {
	if p.Version == 0 {
		p.Version = model.ProjectVersion
	}
	if p.Rects == nil {
		p.Rects = []model.Rect{}
	}
	if p.Paths == nil {
		p.Paths = []model.PathRow{}
	}
	if p.PathOrder == nil {
		p.PathOrder = []string{}
	}
	for i := range p.Paths {
		if p.Paths[i].Points == nil {
			p.Paths[i].Points = []float64{}
		}
	}
}
