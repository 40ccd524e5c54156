package main

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/chazu/convex/internal/config"
	"github.com/chazu/convex/pkg/collision"
	"github.com/chazu/convex/pkg/engine"
	"github.com/chazu/convex/pkg/kernel"
	"github.com/chazu/convex/pkg/kernel/sdfx"
	"github.com/chazu/convex/pkg/scene"
	"github.com/chazu/convex/pkg/tessellate"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// colorPalette is a default palette used to assign distinct colors to bodies.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Mesh kinds in a report.
const (
	MeshDebug          = "debug"
	MeshReference      = "reference"
	MeshReferenceScene = "reference-scene" // every body unioned into one solid
)

// App runs probe scripts and assembles reports.
type App struct {
	engine     *engine.Engine
	kernel     kernel.Kernel
	log        *slog.Logger
	withMeshes bool
	reference  bool
}

// MeshData is the serializable mesh format written to reports and files.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	FaceIDs  []uint32  `json:"faceIds,omitempty"`
	PartName string    `json:"partName"`
	Kind     string    `json:"kind"`
	Color    string    `json:"color"`
}

// BodyData describes one placed body.
type BodyData struct {
	Path    string     `json:"path"`
	Radius  float64    `json:"radius"`
	Height  float64    `json:"height"`
	UserID  uint32     `json:"userId"`
	World   mgl32.Mat4 `json:"world"`
	AABBMin mgl32.Vec3 `json:"aabbMin"`
	AABBMax mgl32.Vec3 `json:"aabbMax"`
	Shape   []byte     `json:"shape"` // serialized collision shape
}

// ErrorData is a serializable eval or validation finding.
type ErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// Report is the full result of one probe run.
type Report struct {
	RunID    string         `json:"runId"`
	Bodies   []BodyData     `json:"bodies"`
	Probes   []engine.Probe `json:"probes"`
	Meshes   []MeshData     `json:"meshes"`
	Errors   []ErrorData    `json:"errors"`
	Warnings []ErrorData    `json:"warnings"`
}

// NewApp creates an App from the probe configuration.
func NewApp(cfg config.ProbeConfig, log *slog.Logger) *App {
	return &App{
		engine:     engine.NewEngineWithTimeout(cfg.EvalTimeout),
		kernel:     sdfx.NewWithCells(cfg.ReferenceCells),
		log:        log,
		withMeshes: cfg.MeshDir != "",
		reference:  cfg.Reference,
	}
}

// Evaluate runs a probe script and returns its report.
func (a *App) Evaluate(source string) Report {
	report := Report{
		RunID:    uuid.NewString(),
		Bodies:   []BodyData{},
		Probes:   []engine.Probe{},
		Meshes:   []MeshData{},
		Errors:   []ErrorData{},
		Warnings: []ErrorData{},
	}
	log := a.log.With("run", report.RunID)

	// Step 1: Evaluate the script into a scene and probes.
	res, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		log.Error("evaluate failed", "err", err)
		report.Errors = append(report.Errors, ErrorData{Message: err.Error()})
		return report
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			report.Errors = append(report.Errors, ErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return report
	}

	// Step 2: Split validation findings.
	for _, v := range res.Validation {
		if v.Severity == scene.SeverityError {
			report.Errors = append(report.Errors, ErrorData{Message: v.Error()})
		} else {
			report.Warnings = append(report.Warnings, ErrorData{Message: v.Error()})
		}
	}
	if scene.HasErrors(res.Validation) {
		return report
	}
	report.Probes = append(report.Probes, res.Probes...)

	// Step 3: Describe every placed body.
	for _, b := range res.Scene.Bodies() {
		bd, err := describeBody(b)
		if err != nil {
			log.Error("describe body failed", "body", b.Path, "err", err)
			report.Errors = append(report.Errors, ErrorData{Message: err.Error()})
			return report
		}
		report.Bodies = append(report.Bodies, bd)
	}
	log.Debug("evaluated", "bodies", len(report.Bodies), "probes", len(report.Probes))

	if !a.withMeshes {
		return report
	}

	// Step 4: Tessellate.
	meshes, err := tessellate.Debug(res.Scene)
	if err != nil {
		log.Error("debug tessellation failed", "err", err)
		report.Errors = append(report.Errors, ErrorData{Message: "tessellation failed: " + err.Error()})
		return report
	}
	report.Meshes = append(report.Meshes, meshData(meshes, MeshDebug)...)

	if a.reference {
		refs, err := tessellate.Reference(res.Scene, a.kernel)
		if err != nil {
			log.Error("reference tessellation failed", "err", err)
			report.Errors = append(report.Errors, ErrorData{Message: "reference tessellation failed: " + err.Error()})
			return report
		}
		report.Meshes = append(report.Meshes, meshData(refs, MeshReference)...)

		merged, err := tessellate.ReferenceScene(res.Scene, a.kernel)
		if err != nil {
			log.Error("reference scene tessellation failed", "err", err)
			report.Errors = append(report.Errors, ErrorData{Message: "reference scene tessellation failed: " + err.Error()})
			return report
		}
		if merged != nil {
			report.Meshes = append(report.Meshes, meshData([]*kernel.Mesh{merged}, MeshReferenceScene)...)
		}
	}
	return report
}

func describeBody(b scene.Body) (BodyData, error) {
	d := b.Shape()
	shape := collision.NewChamferCylinder(float32(d.Radius), float32(d.Height), mgl32.Ident4())
	defer shape.Release()
	shape.SetUserID(d.UserID)

	var buf bytes.Buffer
	if err := shape.Serialize(&buf); err != nil {
		return BodyData{}, fmt.Errorf("serialize %s: %w", b.Path, err)
	}
	lo, hi := shape.CalcAABB(b.World)
	return BodyData{
		Path:    b.Path,
		Radius:  d.Radius,
		Height:  d.Height,
		UserID:  d.UserID,
		World:   b.World,
		AABBMin: lo,
		AABBMax: hi,
		Shape:   buf.Bytes(),
	}, nil
}

// meshData converts kernel meshes, assigning palette colors per body.
func meshData(meshes []*kernel.Mesh, kind string) []MeshData {
	out := make([]MeshData, 0, len(meshes))
	for i, m := range meshes {
		out = append(out, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			FaceIDs:  m.FaceIDs,
			PartName: m.PartName,
			Kind:     kind,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return out
}
