package loader

import (
	"os"
	"path/filepath"
	"testing"
)

const modA = `{
  "functions": [
    {"name": "helper", "linkage": "external", "isDef": false},
    {"name": "main", "linkage": "external", "isDef": true,
     "blocks": [{"id": "b0", "insts": [{"opcode": "ret"}], "succs": []}]}
  ],
  "globals": []
}`

const modB = `{
  "functions": [
    {"name": "helper", "linkage": "external", "isDef": true,
     "blocks": [{"id": "b0", "insts": [{"opcode": "ret"}], "succs": []}]},
    {"name": "local_only", "linkage": "internal", "isDef": true,
     "blocks": [
       {"id": "b0", "insts": [{"opcode": "br"}], "succs": ["b1"]},
       {"id": "b1", "insts": [{"opcode": "ret"}], "succs": []}
     ]}
  ],
  "globals": [{"name": "g_config", "linkage": "external"}]
}`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPrefersDefinitionOverDeclaration(t *testing.T) {
	dir := t.TempDir()
	pathA := writeFixture(t, dir, "a.json", modA)
	pathB := writeFixture(t, dir, "b.json", modB)

	reg, errs := Load([]string{pathA, pathB})
	if len(errs) != 0 {
		t.Fatalf("unexpected load errors: %v", errs)
	}

	fn, ok := reg.Funcs["helper"]
	if !ok {
		t.Fatal("expected helper to be registered")
	}
	if !fn.IsDef {
		t.Error("expected the definition from b.json to win over a.json's declaration")
	}

	if _, ok := reg.Funcs["local_only"]; ok {
		t.Error("internal-linkage function must not appear in Funcs")
	}

	modFuncs, ok := reg.ModuleFuncs["b"]
	if !ok {
		t.Fatal("expected module-local index for module b")
	}
	if _, ok := modFuncs["local_only"]; !ok {
		t.Error("expected local_only to be indexed under its own module")
	}

	if _, ok := reg.Gobjs["g_config"]; !ok {
		t.Error("expected external global to be registered")
	}
}

func TestLoadContinuesPastBadFile(t *testing.T) {
	dir := t.TempDir()
	good := writeFixture(t, dir, "good.json", modA)
	bad := writeFixture(t, dir, "bad.json", "not json")

	reg, errs := Load([]string{bad, good})
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %v", len(errs), errs)
	}
	if len(reg.Modules) != 1 {
		t.Fatalf("expected the good module to still load, got %d modules", len(reg.Modules))
	}
}

func TestLinkComputesPredecessors(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "b.json", modB)

	reg, errs := Load([]string{path})
	if len(errs) != 0 {
		t.Fatalf("unexpected load errors: %v", errs)
	}

	fn := reg.ModuleFuncs["b"]["local_only"]
	if fn == nil {
		t.Fatal("expected local_only to be loaded")
	}
	for _, bb := range fn.Blocks {
		if bb.ID == "b1" {
			if len(bb.Preds) != 1 || bb.Preds[0] != "b0" {
				t.Errorf("expected b1 to have predecessor b0, got %v", bb.Preds)
			}
		}
		if bb.Func != fn {
			t.Error("expected block's Func back-reference to be set")
		}
	}
}
