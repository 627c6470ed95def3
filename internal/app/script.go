package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/reactidoc/internal/session"
	"github.com/specialistvlad/reactidoc/internal/value"
	"gopkg.in/yaml.v3"
)

// Script is a YAML list of actions replayed against a session:
//
//	actions:
//	  - component: doc.answer1.input
//	    action: updateValue
//	    args: "x + 1"
//	  - component: doc.answer1
//	    action: submitAnswer
type Script struct {
	Actions []ScriptAction `yaml:"actions"`
}

// ScriptAction is one entry of a Script.
type ScriptAction struct {
	Component string `yaml:"component"`
	Action    string `yaml:"action"`
	Args      any    `yaml:"args"`
}

// ReadScript decodes a script. An empty input is an empty script.
func ReadScript(r io.Reader) ([]session.Action, error) {
	var s Script
	if err := yaml.NewDecoder(r).Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode action script: %w", err)
	}
	actions := make([]session.Action, 0, len(s.Actions))
	for i, sa := range s.Actions {
		if sa.Component == "" || sa.Action == "" {
			return nil, fmt.Errorf("action %d: 'component' and 'action' are required", i+1)
		}
		args, err := value.FromGo(sa.Args)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i+1, err)
		}
		actions = append(actions, session.Action{Component: sa.Component, Name: sa.Action, Args: args})
	}
	return actions, nil
}

// ReadScriptFile reads the script at path.
func ReadScriptFile(path string) ([]session.Action, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadScript(f)
}
