package mcp

import (
	"context"
	"fmt"
	"strings"

	"eightd/internal/audit"
	"eightd/internal/knowledge"
	"eightd/internal/logging"
	"eightd/internal/report"
	"eightd/internal/rules"
	"eightd/internal/sections"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// RecentHistory is how many experiences the review prompt includes.
const RecentHistory = 3

// Options configures a Server. Nil collaborators get working defaults.
type Options struct {
	Auditor           *audit.Auditor
	Renderer          *report.Renderer
	Knowledge         knowledge.Store
	GoldenPromptPath  string
	RequireLogicAudit bool
	OutputDir         string
	Version           string
}

// Server wraps the MCP SDK server and exposes the 8D review tools.
type Server struct {
	MCPServer *sdkmcp.Server

	auditor           *audit.Auditor
	renderer          *report.Renderer
	store             knowledge.Store
	goldenPromptPath  string
	requireLogicAudit bool
	outputDir         string
}

// NewServer creates an MCP server with the review tools and prompt.
func NewServer(opts Options) *Server {
	s := &Server{
		auditor:           opts.Auditor,
		renderer:          opts.Renderer,
		store:             opts.Knowledge,
		goldenPromptPath:  opts.GoldenPromptPath,
		requireLogicAudit: opts.RequireLogicAudit,
		outputDir:         opts.OutputDir,
	}
	if s.auditor == nil {
		s.auditor = audit.New(sections.ModeLeaky)
	}
	if s.renderer == nil {
		s.renderer = &report.Renderer{}
	}
	if s.store == nil {
		s.store = knowledge.NewMemStore()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "eightd", Version: version},
		nil,
	)
	s.registerTools()
	s.registerPrompts()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "read_8d_report",
		Description: "Read an 8D report (.docx, .txt or .md) and return its flattened text, D1-D8 sections and paragraph count.",
	}, s.handleRead)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "review_8d_report",
		Description: "Run the deterministic D3-D8 checks on an 8D report and return the verdict. D3-D7 must all pass for approval; D8 is advisory.",
	}, s.handleReview)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "prepare_logic_audit_packet",
		Description: "Return the D3-D7 source text, the gate result and the instructions for a Stage-2 logic audit (risk flags only).",
	}, s.handlePacket)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "generate_review_report",
		Description: "Render the full Markdown review report for an 8D report without saving it.",
	}, s.handleGenerate)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "save_review_report",
		Description: "Render the review report, append the Stage-2 logic audit and save it as 8D_Review_<name>_<timestamp>.md. When the logic audit is required and missing, returns status needs_logic_audit with the packet and writes nothing.",
	}, s.handleSave)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_experience",
		Description: "List saved review experiences, optionally filtered by a case-insensitive keyword.",
	}, s.handleGetExperience)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "save_experience",
		Description: "Save a review experience (summary and optional expert note) to the knowledge base.",
	}, s.handleSaveExperience)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_golden_prompt",
		Description: "Return the 8D review standard (golden prompt).",
	}, s.handleGoldenPrompt)
}

func (s *Server) registerPrompts() {
	s.MCPServer.AddPrompt(&sdkmcp.Prompt{
		Name:        "review_8d_prompt",
		Description: "8D report review guide: review standard, recent history and the review process.",
	}, s.handleReviewPrompt)
}

// --- Tool input/output types ---

type fileInput struct {
	FilePath string `json:"file_path" jsonschema:"path to the 8D report (.docx, .txt or .md)"`
}

type reviewOutput struct {
	FilePath       string           `json:"file_path"`
	Verdict        string           `json:"verdict"`
	OverallPassed  bool             `json:"overall_passed"`
	FailedSections []sections.Label `json:"failed_sections"`
	Reviews        rules.Reviews    `json:"reviews"`
	ReviewDate     string           `json:"review_date"`
}

type generateInput struct {
	FilePath    string `json:"file_path" jsonschema:"path to the 8D report (.docx, .txt or .md)"`
	ReportTitle string `json:"report_title,omitempty" jsonschema:"report title (default 8D Report Review)"`
}

type generateOutput struct {
	Markdown string `json:"markdown"`
}

type saveInput struct {
	FilePath          string `json:"file_path" jsonschema:"path to the 8D report (.docx, .txt or .md)"`
	ReportTitle       string `json:"report_title,omitempty" jsonschema:"report title (default 8D Report Review)"`
	LogicReviewMD     string `json:"logic_review_md,omitempty" jsonschema:"Stage-2 logic audit Markdown to append (risk flags only)"`
	RequireLogicAudit *bool  `json:"require_logic_audit,omitempty" jsonschema:"require the logic audit before saving (server default when omitted)"`
}

type getExperienceInput struct {
	Keyword string `json:"keyword,omitempty" jsonschema:"case-insensitive search keyword"`
}

type experience struct {
	Key        string `json:"key"`
	Summary    string `json:"summary"`
	ExpertNote string `json:"expert_note"`
	Timestamp  string `json:"timestamp"`
}

type getExperienceOutput struct {
	Experiences []experience `json:"experiences"`
	Count       int          `json:"count"`
	Message     string       `json:"message,omitempty"`
}

type saveExperienceInput struct {
	Key        string `json:"key" jsonschema:"experience id, e.g. 1214_8D_ProductA (generated when empty)"`
	Summary    string `json:"summary" jsonschema:"review conclusion summary"`
	ExpertNote string `json:"expert_note,omitempty" jsonschema:"optional expert note"`
}

type saveExperienceOutput struct {
	Message          string `json:"message"`
	Key              string `json:"key"`
	TotalExperiences int    `json:"total_experiences"`
}

type goldenPromptInput struct{}

type goldenPromptOutput struct {
	GoldenPrompt string `json:"golden_prompt"`
}

// --- Tool handlers ---

func (s *Server) handleRead(_ context.Context, _ *sdkmcp.CallToolRequest, input fileInput) (*sdkmcp.CallToolResult, audit.Document, error) {
	doc, err := s.auditor.Read(input.FilePath)
	if err != nil {
		return nil, audit.Document{}, err
	}
	return nil, *doc, nil
}

func (s *Server) review(path string) (*audit.Outcome, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("file_path is required")
	}
	return s.auditor.Review(path)
}

func (s *Server) handleReview(_ context.Context, _ *sdkmcp.CallToolRequest, input fileInput) (*sdkmcp.CallToolResult, reviewOutput, error) {
	out, err := s.review(input.FilePath)
	if err != nil {
		return nil, reviewOutput{}, err
	}
	v := out.Verdict
	return nil, reviewOutput{
		FilePath:       out.FilePath(),
		Verdict:        v.Banner(),
		OverallPassed:  v.OverallPassed,
		FailedSections: v.FailedSections,
		Reviews:        v.Reviews,
		ReviewDate:     out.ReviewDate,
	}, nil
}

func (s *Server) handlePacket(_ context.Context, _ *sdkmcp.CallToolRequest, input fileInput) (*sdkmcp.CallToolResult, report.Packet, error) {
	out, err := s.review(input.FilePath)
	if err != nil {
		return nil, report.Packet{}, err
	}
	return nil, *report.NewPacket(out), nil
}

func (s *Server) titled(title string) *report.Renderer {
	r := *s.renderer
	if title != "" {
		r.Title = title
	}
	return &r
}

func (s *Server) handleGenerate(_ context.Context, _ *sdkmcp.CallToolRequest, input generateInput) (*sdkmcp.CallToolResult, generateOutput, error) {
	out, err := s.review(input.FilePath)
	if err != nil {
		return nil, generateOutput{}, err
	}
	return nil, generateOutput{Markdown: s.titled(input.ReportTitle).Render(out)}, nil
}

func (s *Server) handleSave(_ context.Context, _ *sdkmcp.CallToolRequest, input saveInput) (*sdkmcp.CallToolResult, report.SaveResult, error) {
	out, err := s.review(input.FilePath)
	if err != nil {
		return nil, report.SaveResult{}, err
	}
	require := s.requireLogicAudit
	if input.RequireLogicAudit != nil {
		require = *input.RequireLogicAudit
	}
	res, err := s.titled(input.ReportTitle).Save(out, report.SaveOptions{
		LogicAudit:        input.LogicReviewMD,
		RequireLogicAudit: require,
		OutputDir:         s.outputDir,
	})
	if err != nil {
		return nil, report.SaveResult{}, fmt.Errorf("save review report: %w", err)
	}
	if res.Status == report.StatusNeedsLogicAudit {
		logging.New("mcp").Info("save deferred until logic audit", "file", input.FilePath)
	}
	return nil, *res, nil
}

func (s *Server) handleGetExperience(_ context.Context, _ *sdkmcp.CallToolRequest, input getExperienceInput) (*sdkmcp.CallToolResult, getExperienceOutput, error) {
	entries, err := s.store.Load()
	if err != nil {
		return nil, getExperienceOutput{}, fmt.Errorf("load experience: %w", err)
	}
	if len(entries) == 0 {
		return nil, getExperienceOutput{Experiences: []experience{}, Message: "No history found"}, nil
	}
	if input.Keyword != "" {
		entries = knowledge.Search(entries, input.Keyword)
	}
	list := make([]experience, 0, len(entries))
	for _, e := range knowledge.Sorted(entries) {
		list = append(list, experience{Key: e.Key, Summary: e.Summary, ExpertNote: e.ExpertNote, Timestamp: e.Timestamp})
	}
	return nil, getExperienceOutput{Experiences: list, Count: len(list)}, nil
}

func (s *Server) handleSaveExperience(_ context.Context, _ *sdkmcp.CallToolRequest, input saveExperienceInput) (*sdkmcp.CallToolResult, saveExperienceOutput, error) {
	key, total, err := knowledge.Put(s.store, input.Key, input.Summary, input.ExpertNote)
	if err != nil {
		return nil, saveExperienceOutput{}, fmt.Errorf("save experience: %w", err)
	}
	logging.New("mcp").Info("experience saved", "key", key, "total", total)
	return nil, saveExperienceOutput{
		Message:          "Experience saved: " + key,
		Key:              key,
		TotalExperiences: total,
	}, nil
}

func (s *Server) handleGoldenPrompt(_ context.Context, _ *sdkmcp.CallToolRequest, _ goldenPromptInput) (*sdkmcp.CallToolResult, goldenPromptOutput, error) {
	text, err := knowledge.LoadGoldenPrompt(s.goldenPromptPath)
	if err != nil {
		return nil, goldenPromptOutput{}, err
	}
	return nil, goldenPromptOutput{GoldenPrompt: text}, nil
}

// --- Prompts ---

const reviewProcess = `## Review Process
1. Use ` + "`read_8d_report`" + ` to read the report.
2. Use ` + "`review_8d_report`" + ` to run the strict D3-D8 checks.
3. Use ` + "`prepare_logic_audit_packet`" + ` to get the D3-D7 source text and the gate result.
4. Write a short Stage-2 logic audit following ` + "`logic_audit_instructions`" + ` (risk flags only, verbatim Evidence quotes, Not Found when missing).
5. Use ` + "`save_review_report`" + ` with ` + "`logic_review_md`" + ` to append the audit and save the report.
   - If it returns status ` + "`needs_logic_audit`" + `, write the audit from the returned ` + "`logic_audit_packet`" + ` and call it again with ` + "`logic_review_md`" + `.
6. Use ` + "`save_experience`" + ` to record key learnings.
`

// ReviewPrompt assembles the review guide from the golden prompt and the
// most recent experiences in store.
func ReviewPrompt(golden string, store knowledge.Store) (string, error) {
	entries, err := store.Load()
	if err != nil {
		return "", fmt.Errorf("load experience: %w", err)
	}
	history := "No history available"
	if recent := knowledge.Recent(entries, RecentHistory); len(recent) > 0 {
		lines := make([]string, len(recent))
		for i, e := range recent {
			lines[i] = fmt.Sprintf("- %s: %s", e.Key, e.Summary)
		}
		history = strings.Join(lines, "\n")
	}
	var b strings.Builder
	b.WriteString("# 8D Report Review Guide\n\n")
	b.WriteString(strings.TrimSpace(golden))
	b.WriteString("\n\n## Review History\n")
	b.WriteString(history)
	b.WriteString("\n\n")
	b.WriteString(reviewProcess)
	return b.String(), nil
}

func (s *Server) handleReviewPrompt(_ context.Context, _ *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	golden, err := knowledge.LoadGoldenPrompt(s.goldenPromptPath)
	if err != nil {
		return nil, err
	}
	text, err := ReviewPrompt(golden, s.store)
	if err != nil {
		return nil, err
	}
	return &sdkmcp.GetPromptResult{
		Description: "8D report review guide",
		Messages: []*sdkmcp.PromptMessage{
			{Role: "user", Content: &sdkmcp.TextContent{Text: text}},
		},
	}, nil
}
