// cmd/tools/worker-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"devtogether/pkg/registry"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name         string
	PackageName  string
	TaskType     string
	Description  string
	Category     string
	Directory    string
	InputFields  []Field
	OutputFields []Field
	ErrorCodes   []string
	Timeout      string
	Retries      int
	Required     []string
}

// Field is one generated struct field.
type Field struct {
	GoName   string
	GoType   string
	JSONName string
}

// parseSchema extracts properties from a JSON schema object
func parseSchema(schemaObj map[string]interface{}) map[string]interface{} {
	if props, ok := schemaObj["properties"].(map[string]interface{}); ok {
		return props
	}
	return map[string]interface{}{}
}

func requiredFields(schemaObj map[string]interface{}) []string {
	raw, ok := schemaObj["required"].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// goTypeFromJSONType maps JSON schema types to Go types
func goTypeFromJSONType(jsonType interface{}) string {
	jt, _ := jsonType.(string)
	switch jt {
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

// goFieldName turns a camelCase JSON property into an exported Go name, with the
// usual initialisms upper-cased (developerId -> DeveloperID, qrCodeUrl -> QRCodeURL).
func goFieldName(prop string) string {
	var words []string
	start := 0
	for i := 1; i <= len(prop); i++ {
		if i == len(prop) || (prop[i] >= 'A' && prop[i] <= 'Z') {
			words = append(words, prop[start:i])
			start = i
		}
	}
	for i, w := range words {
		switch strings.ToLower(w) {
		case "id", "url", "qr", "api", "http", "json":
			words[i] = strings.ToUpper(w)
		default:
			words[i] = upperFirst(w)
		}
	}
	return strings.Join(words, "")
}

// fieldsFromSchema returns the schema properties as struct fields, sorted by JSON name
// so regenerated files are stable.
func fieldsFromSchema(schemaObj map[string]interface{}) []Field {
	props := parseSchema(schemaObj)
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		details, _ := props[name].(map[string]interface{})
		fields = append(fields, Field{
			GoName:   goFieldName(name),
			GoType:   goTypeFromJSONType(details["type"]),
			JSONName: name,
		})
	}
	return fields
}

// upperFirst capitalizes the first letter of a string
func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// packageName strips the dashes from a task type (track-profile-view -> trackprofileview).
func packageName(taskType string) string {
	return strings.ReplaceAll(strings.ToLower(taskType), "-", "")
}

// mapCategoryToDirectory maps registry categories to directory names
func mapCategoryToDirectory(category string) string {
	switch category {
	case "dashboard", "developer-dashboard":
		return "dashboard"
	case "profile", "profile-analytics", "sharing":
		return "profile"
	case "search", "project-search":
		return "search"
	default:
		return strings.ToLower(category)
	}
}

func newWorkerData(activity registry.Activity) WorkerData {
	return WorkerData{
		Name:         activity.DisplayName,
		PackageName:  packageName(activity.TaskType),
		TaskType:     activity.TaskType,
		Description:  activity.Description,
		Category:     activity.Category,
		Directory:    mapCategoryToDirectory(activity.Category),
		InputFields:  fieldsFromSchema(activity.InputSchema),
		OutputFields: fieldsFromSchema(activity.OutputSchema),
		ErrorCodes:   activity.ErrorCodes,
		Timeout:      activity.Timeout,
		Retries:      activity.Retries,
		Required:     requiredFields(activity.InputSchema),
	}
}

const configTemplate = `// internal/workers/{{.Directory}}/{{.TaskType}}/config.go
package {{.PackageName}}

import (
	"time"

	"devtogether/internal/common/camunda"
	"devtogether/internal/common/config"
	"devtogether/internal/common/validation"
	"devtogether/pkg/registry"
)

type Config struct {
	Timeout time.Duration
	Schema  *validation.SchemaValidator
}

func LoadConfig(appCfg *config.Config, reg *registry.ActivityRegistry) (*Config, error) {
	schema, err := camunda.InputValidator(reg, TaskType)
	if err != nil {
		return nil, err
	}
	return &Config{
		Timeout: config.GetDuration(config.GetWorkerConfig(appCfg, TaskType).Timeout),
		Schema:  schema,
	}, nil
}
`

const modelsTemplate = `// internal/workers/{{.Directory}}/{{.TaskType}}/models.go
package {{.PackageName}}

type Input struct {
{{- range .InputFields}}
	{{.GoName}} {{.GoType}} ` + "`json:\"{{.JSONName}}\"`" + `
{{- end}}
}

type Output struct {
{{- range .OutputFields}}
	{{.GoName}} {{.GoType}} ` + "`json:\"{{.JSONName}},omitempty\"`" + `
{{- end}}
}
`

const handlerTemplate = `// internal/workers/{{.Directory}}/{{.TaskType}}/handler.go
package {{.PackageName}}

import (
	"context"
	"time"

	"devtogether/internal/common/camunda"
	"devtogether/internal/common/errors"
	"devtogether/internal/common/logger"
	"devtogether/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "{{.TaskType}}"

// Service does the work behind {{.Name}}.
type Service interface {
	Run(ctx context.Context, input *Input) (*Output, error)
}

type Handler struct {
	config       *Config
	service      Service
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, service Service, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		service:      service,
		logger:       l,
		errorHandler: errors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := camunda.JobContext(h.config.Timeout)
	defer cancel()

	var input Input
	if err := camunda.DecodeVariables(job, h.config.Schema, &input); err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{"jobKey": job.GetKey(), "error": err.Error()})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Run(ctx, input)
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.AsStandardError(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
`

const testTemplate = `// internal/workers/{{.Directory}}/{{.TaskType}}/handler_test.go
package {{.PackageName}}

import (
	"context"
	"testing"

	"devtogether/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Run(ctx context.Context, input *Input) (*Output, error) {
	args := m.Called(ctx, input)
	if out := args.Get(0); out != nil {
		return out.(*Output), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestHandler_Execute(t *testing.T) {
	svc := new(MockService)
	h := NewHandler(&Config{}, svc, logger.NewTestLogger(t))

	input := &Input{}
	svc.On("Run", mock.Anything, input).Return(&Output{}, nil)

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.NotNil(t, out)
	svc.AssertExpectations(t)
}
`

func main() {
	activity := flag.String("activity", "", "Activity ID from registry (e.g., track-profile-view)")
	outputDir := flag.String("output", "./internal/workers/", "Root directory for generated workers")
	registryPath := flag.String("registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	force := flag.Bool("force", false, "Overwrite files in an existing worker directory")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator -activity <activity-id> [-output dir] [-registry path] [-force]")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry: %v\n", err)
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
		fmt.Printf("Activity %q not found in registry\n", *activity)
		os.Exit(1)
	}

	data := newWorkerData(*found)
	workerDir := filepath.Join(*outputDir, data.Directory, data.TaskType)

	if _, err := os.Stat(workerDir); err == nil && !*force {
		fmt.Printf("Worker directory %s already exists, pass -force to overwrite\n", workerDir)
		os.Exit(1)
	}
	if err := os.MkdirAll(workerDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	templates := map[string]string{
		"config.go":       configTemplate,
		"models.go":       modelsTemplate,
		"handler.go":      handlerTemplate,
		"handler_test.go": testTemplate,
	}

	failed := false
	for filename, tmplStr := range templates {
		if err := render(filepath.Join(workerDir, filename), tmplStr, data); err != nil {
			fmt.Printf("Error generating %s: %v\n", filename, err)
			failed = true
			continue
		}
		fmt.Printf("✓ Generated %s\n", filepath.Join(workerDir, filename))
	}
	if failed {
		os.Exit(1)
	}

	fmt.Printf("\n✅ Worker scaffold generated at: %s\n", workerDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Replace Service with the aggregator method the worker calls\n")
	fmt.Printf("  2. Register the worker in startWorkers (cmd/devtogether)\n")
	fmt.Printf("  3. Add a workers.%s entry to configs/config.yaml\n", data.TaskType)
}

func render(path, tmplStr string, data WorkerData) error {
	tmpl, err := template.New(filepath.Base(path)).Parse(tmplStr)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return tmpl.Execute(file, data)
}
