// cmd/tools/worker-generator/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"emergency-workers/pkg/registry"
)

// WorkerData feeds the scaffold templates.
type WorkerData struct {
	Name         string
	PackageName  string
	TaskType     string
	Description  string
	InputFields  []Field
	OutputFields []Field
	Timeout      string
}

// Field is one struct field derived from a JSON schema property.
type Field struct {
	GoName   string
	GoType   string
	JSONName string
	Required bool
}

var errWorkerExists = errors.New("worker directory already exists")

func main() {
	activity := flag.String("activity", "", "Activity ID from registry (e.g., verify-contact)")
	outputDir := flag.String("output", "./internal/workers/emergency", "Directory the worker package is created in")
	registryPath := flag.String("registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator -activity <id> [-output <dir>] [-registry <path>]")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}

	var found *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == *activity {
			found = &reg.Activities[i]
			break
		}
	}
	if found == nil {
		fmt.Fprintf(os.Stderr, "Activity %q not found in registry %s\n", *activity, *registryPath)
		os.Exit(1)
	}

	dir, files, err := generate(*found, *outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, f := range files {
		fmt.Printf("Generated %s\n", f)
	}
	fmt.Printf("\nWorker scaffold generated at %s\n", dir)
	fmt.Println("Add its TaskType to internal/workers/emergency/tasks.go and start it from cmd/worker-manager.")
}

// generate renders the scaffold for a into outputDir/<activity id>. It
// refuses to touch an existing worker.
func generate(a registry.Activity, outputDir string) (string, []string, error) {
	data := workerData(a)
	dir := filepath.Join(outputDir, a.ID)

	if _, err := os.Stat(dir); err == nil {
		return "", nil, fmt.Errorf("%w: %s", errWorkerExists, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create directory: %w", err)
	}

	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)

	var written []string
	for _, name := range names {
		tmpl, err := template.New(name).Parse(templates[name])
		if err != nil {
			return "", written, fmt.Errorf("parse template %s: %w", name, err)
		}
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return "", written, fmt.Errorf("create %s: %w", path, err)
		}
		err = tmpl.Execute(f, data)
		f.Close()
		if err != nil {
			return "", written, fmt.Errorf("render %s: %w", name, err)
		}
		written = append(written, path)
	}
	return dir, written, nil
}

func workerData(a registry.Activity) WorkerData {
	timeout := a.Timeout
	if timeout == "" {
		timeout = "10s"
	}
	return WorkerData{
		Name:         a.DisplayName,
		PackageName:  strings.ReplaceAll(a.ID, "-", ""),
		TaskType:     a.TaskType,
		Description:  a.Description,
		InputFields:  schemaFields(a.InputSchema),
		OutputFields: schemaFields(a.OutputSchema),
		Timeout:      timeout,
	}
}

// schemaFields lists the schema's top-level properties sorted by name.
func schemaFields(schema map[string]interface{}) []Field {
	props, _ := schema["properties"].(map[string]interface{})
	required := map[string]bool{}
	if req, ok := schema["required"].([]interface{}); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	fields := make([]Field, 0, len(props))
	for name, raw := range props {
		details, _ := raw.(map[string]interface{})
		fields = append(fields, Field{
			GoName:   goName(name),
			GoType:   goType(details["type"]),
			JSONName: name,
			Required: required[name],
		})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].JSONName < fields[j].JSONName })
	return fields
}

// goType maps a JSON schema type to a Go type. Union types such as
// ["object","null"] use their first non-null member.
func goType(t interface{}) string {
	if list, ok := t.([]interface{}); ok {
		for _, v := range list {
			if s, ok := v.(string); ok && s != "null" {
				t = s
				break
			}
		}
	}
	switch t {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		return "[]interface{}"
	default:
		return "interface{}"
	}
}

// goName turns a camelCase property into an exported identifier, keeping
// the common initialisms upper case.
func goName(prop string) string {
	if prop == "" {
		return prop
	}
	name := strings.ToUpper(prop[:1]) + prop[1:]
	for _, suffix := range []string{"Id", "Url", "Sms"} {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix) + strings.ToUpper(suffix)
		}
	}
	return name
}
