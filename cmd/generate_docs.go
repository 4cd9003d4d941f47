package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"text/template"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/hemanthvallapani/voice-calendar/internal/appointments"
	"github.com/hemanthvallapani/voice-calendar/internal/calendar"
	"github.com/hemanthvallapani/voice-calendar/internal/google"
	"github.com/hemanthvallapani/voice-calendar/internal/server"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, so the documentation always matches the tool definitions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			markdown, err := toolsMarkdown(context.Background())
			if err != nil {
				return err
			}

			if outputFile == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), markdown)
				return err
			}
			if err := os.WriteFile(outputFile, []byte(markdown), 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// toolsMarkdown registers the tools against an unauthenticated client and
// renders their definitions. No Google API call is made.
func toolsMarkdown(ctx context.Context) (string, error) {
	client, err := calendar.NewClient(ctx, google.StaticTokenProvider{Token: &oauth2.Token{AccessToken: "docs"}})
	if err != nil {
		return "", err
	}
	svc, err := appointments.NewService(client, appointments.DefaultConfig())
	if err != nil {
		return "", err
	}
	sc, err := server.NewServerContext(ctx, svc)
	if err != nil {
		return "", fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	mcpSrv, err := newMCPServer(sc)
	if err != nil {
		return "", err
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}
	return generateToolsMarkdown(tools), nil
}

type toolDoc struct {
	Name        string
	Description string
	Args        []argDoc
}

type argDoc struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

var toolsTemplate = template.Must(template.New("tools").Parse(`# MCP Tools Reference

Tools available at ` + "`/mcp`" + ` on ` + "`voice-calendar serve`" + ` and over stdio with ` + "`voice-calendar mcp`" + `.

**Note:** This documentation is automatically generated from the tool definitions.

Times without an offset are read in the ` + "`timezone`" + ` argument, or in the server's default zone when it is omitted.

## Table of Contents

{{range .}}- [{{.Name}}](#{{.Name}})
{{end}}
## Tools
{{range .}}
### {{.Name}}

{{if .Description}}{{.Description}}

{{end}}{{if .Args}}**Arguments:**
{{range .Args}}- ` + "`{{.Name}}`" + ` ({{.Type}}, {{if .Required}}required{{else}}optional{{end}}): {{.Description}}
{{end}}
{{end}}{{end}}`))

func generateToolsMarkdown(tools []mcp.Tool) string {
	docs := make([]toolDoc, 0, len(tools))
	for _, tool := range tools {
		docs = append(docs, newToolDoc(tool))
	}
	slices.SortFunc(docs, func(a, b toolDoc) int { return strings.Compare(a.Name, b.Name) })

	var sb strings.Builder
	if err := toolsTemplate.Execute(&sb, docs); err != nil {
		// The template is fixed and only reads strings and bools.
		panic(err)
	}
	return sb.String()
}

func newToolDoc(tool mcp.Tool) toolDoc {
	doc := toolDoc{Name: tool.Name, Description: tool.Description}

	for name, raw := range tool.InputSchema.Properties {
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		arg := argDoc{
			Name:     name,
			Type:     "any",
			Required: slices.Contains(tool.InputSchema.Required, name),
		}
		if t, ok := prop["type"].(string); ok {
			arg.Type = t
		}
		if d, ok := prop["description"].(string); ok {
			arg.Description = d
		}
		doc.Args = append(doc.Args, arg)
	}
	slices.SortFunc(doc.Args, func(a, b argDoc) int { return strings.Compare(a.Name, b.Name) })

	return doc
}
