package util

import "testing"

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("You are {{.name}}. Scope: {{upper .scope}}.", map[string]any{"name": "Orchestrator", "scope": "triage"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "You are Orchestrator. Scope: TRIAGE." {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRenderTemplate_FastPath(t *testing.T) {
	const text = "no markers here"
	out, err := RenderTemplate(text, nil)
	if err != nil || out != text {
		t.Errorf("fast path changed text: %q err=%v", out, err)
	}
}

func TestRenderTemplate_NoHTMLEscaping(t *testing.T) {
	out, err := RenderTemplate("say {{.q}}", map[string]any{"q": `"<hello>"`})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != `say "<hello>"` {
		t.Errorf("instruction text must not be escaped, got %q", out)
	}
}

type repoParams struct {
	Repo  string `json:"repo" description:"owner/name"`
	Limit int    `json:"limit,omitempty"`
}

func TestCreateSchemaAndValidate(t *testing.T) {
	schema := CreateSchema(repoParams{})
	props, _ := schema["properties"].(map[string]any)
	if _, ok := props["repo"]; !ok {
		t.Fatalf("missing repo property: %+v", schema)
	}
	required, _ := schema["required"].([]string)
	if len(required) != 1 || required[0] != "repo" {
		t.Errorf("unexpected required list: %+v", required)
	}

	if err := ValidateParameters(map[string]any{"repo": "hupe1980/roundtable"}, schema); err != nil {
		t.Errorf("valid params rejected: %v", err)
	}
	if err := ValidateParameters(map[string]any{"limit": 3}, schema); err == nil {
		t.Error("missing required field not rejected")
	}
	if err := ValidateParameters(map[string]any{"repo": 42}, schema); err == nil {
		t.Error("wrong type not rejected")
	}
}
