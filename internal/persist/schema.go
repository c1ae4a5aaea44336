package persist

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed snapshot.cue
var schemaSource string

// Schema checks raw snapshot JSON against snapshot.cue before it is decoded.
type Schema struct {
	mu       sync.Mutex
	ctx      *cue.Context
	snapshot cue.Value
}

// NewSchema compiles the embedded snapshot schema.
func NewSchema() (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaSource, cue.Filename("snapshot.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling snapshot schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#Snapshot"))
	if !def.Exists() {
		return nil, fmt.Errorf("snapshot schema has no #Snapshot definition")
	}
	return &Schema{ctx: ctx, snapshot: def}, nil
}

// Check reports whether data is JSON that satisfies #Snapshot.
func (s *Schema) Check(data []byte) error {
	expr, err := cuejson.Extract("snapshot.json", data)
	if err != nil {
		return fmt.Errorf("extracting json: %w", err)
	}

	// cue.Context is not safe for concurrent use.
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ctx.BuildExpr(expr)
	if err := v.Err(); err != nil {
		return fmt.Errorf("building value: %w", err)
	}
	if err := s.snapshot.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}
