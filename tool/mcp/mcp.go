package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hupe1980/roundtable/logging"
	"github.com/hupe1980/roundtable/tool"
)

// Supported server transports.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// DefaultCallTimeout bounds a single remote tool call.
const DefaultCallTimeout = 30 * time.Second

// ServerConfig describes one MCP server connection.
type ServerConfig struct {
	// Name identifies the server and prefixes its discovered tool names.
	Name string

	// Transport selects how the server is reached, TransportStdio or
	// TransportHTTP.
	Transport string

	// Command, Args and Env configure a stdio server subprocess.
	Command string
	Args    []string
	Env     map[string]string

	// URL is the endpoint of a streamable HTTP server.
	URL string
}

// Options configures the MCP provider.
type Options struct {
	// Logger receives connection and discovery diagnostics.
	Logger logging.Logger

	// CallTimeout bounds each remote tool call. Defaults to
	// DefaultCallTimeout.
	CallTimeout time.Duration
}

// client is the slice of the MCP client surface the provider needs. The
// concrete clients from mark3labs/mcp-go satisfy it, and tests substitute
// fakes.
type client interface {
	ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

type serverConn struct {
	name   string
	client client
}

// Provider exposes the tools of one or more MCP servers as a capability
// provider. It is immutable after construction; the enumeration the registry
// performs returns the inventory discovered at connect time.
type Provider struct {
	conns   []serverConn
	tools   []tool.Tool
	timeout time.Duration
	logger  logging.Logger
}

var _ tool.Provider = (*Provider)(nil)

// NewProvider dials every configured server, runs the MCP initialize
// handshake and discovers the remote tool inventory. A connection failure is
// fatal. A discovery failure skips the affected server unless every server
// fails, keeping bindings against healthy servers resolvable.
func NewProvider(ctx context.Context, servers []ServerConfig, optFns ...func(o *Options)) (*Provider, error) {
	opts := Options{
		Logger:      logging.NoOpLogger{},
		CallTimeout: DefaultCallTimeout,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if len(servers) == 0 {
		return nil, errors.New("mcp: at least one server is required")
	}

	p := &Provider{
		timeout: opts.CallTimeout,
		logger:  opts.Logger,
	}

	for _, srv := range servers {
		conn, err := p.connect(ctx, srv)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("mcp server %q: %w", srv.Name, err)
		}
		p.conns = append(p.conns, *conn)
	}

	if err := p.discover(ctx); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// newProviderWithClients builds a provider over pre-connected clients. Tests
// use it to exercise discovery without live servers.
func newProviderWithClients(ctx context.Context, conns []serverConn, optFns ...func(o *Options)) (*Provider, error) {
	opts := Options{
		Logger:      logging.NoOpLogger{},
		CallTimeout: DefaultCallTimeout,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	p := &Provider{
		conns:   conns,
		timeout: opts.CallTimeout,
		logger:  opts.Logger,
	}

	if err := p.discover(ctx); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Provider) connect(ctx context.Context, srv ServerConfig) (*serverConn, error) {
	var c client

	switch srv.Transport {
	case TransportStdio:
		stdio, err := mcpclient.NewStdioMCPClient(srv.Command, envSlice(srv.Env), srv.Args...)
		if err != nil {
			return nil, fmt.Errorf("create stdio client: %w", err)
		}

		c = stdio
	case TransportHTTP:
		t, err := transport.NewStreamableHTTP(srv.URL)
		if err != nil {
			return nil, fmt.Errorf("create http transport: %w", err)
		}

		httpClient := mcpclient.NewClient(t)
		if err := httpClient.Start(ctx); err != nil {
			return nil, fmt.Errorf("start http client: %w", err)
		}

		c = httpClient
	default:
		return nil, fmt.Errorf("unsupported transport %q", srv.Transport)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "roundtable",
		Version: "1.0.0",
	}

	if ic, ok := c.(interface {
		Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	}); ok {
		if _, err := ic.Initialize(ctx, initReq); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("initialize: %w", err)
		}
	}

	p.logger.Info("mcp server connected", "name", srv.Name, "transport", srv.Transport)

	return &serverConn{name: srv.Name, client: c}, nil
}

func (p *Provider) discover(ctx context.Context) error {
	var failures []string

	healthy := 0

	for _, conn := range p.conns {
		result, err := conn.client.ListTools(ctx, mcp.ListToolsRequest{})
		if err != nil {
			p.logger.Warn("mcp discovery failed, skipping server", "server", conn.name, "error", err)
			failures = append(failures, fmt.Sprintf("%s: %v", conn.name, err))

			continue
		}

		for _, def := range result.Tools {
			remote := newRemoteTool(conn.name, conn.client, def, p.timeout, p.logger)
			p.tools = append(p.tools, remote)

			p.logger.Debug("mcp tool discovered", "server", conn.name, "tool", def.Name, "full_name", remote.Name())
		}

		p.logger.Info("mcp tools discovered", "server", conn.name, "count", len(result.Tools))

		healthy++
	}

	if healthy == 0 && len(failures) > 0 {
		return fmt.Errorf("all mcp servers failed discovery: %s", strings.Join(failures, "; "))
	}

	return nil
}

// ListCapabilities returns the tool inventory discovered at construction.
func (p *Provider) ListCapabilities(_ context.Context) ([]tool.Tool, error) {
	tools := make([]tool.Tool, len(p.tools))
	copy(tools, p.tools)

	return tools, nil
}

// Close shuts down every server connection.
func (p *Provider) Close() {
	for _, conn := range p.conns {
		if err := conn.client.Close(); err != nil {
			p.logger.Warn("mcp server close error", "server", conn.name, "error", err)
		}
	}
}

// remoteTool adapts a single discovered MCP tool to the tool.Tool interface.
type remoteTool struct {
	server   string
	client   client
	def      mcp.Tool
	fullName string
	timeout  time.Duration
	logger   logging.Logger
}

func newRemoteTool(server string, c client, def mcp.Tool, timeout time.Duration, logger logging.Logger) *remoteTool {
	return &remoteTool{
		server:   server,
		client:   c,
		def:      def,
		fullName: fmt.Sprintf("mcp_%s_%s", sanitizeName(server), sanitizeName(def.Name)),
		timeout:  timeout,
		logger:   logger,
	}
}

// Name returns the prefixed binding name of the remote tool.
func (t *remoteTool) Name() string {
	return t.fullName
}

// Description returns the server-supplied description, or a placeholder when
// the server omits one.
func (t *remoteTool) Description() string {
	if t.def.Description == "" {
		return fmt.Sprintf("MCP tool %q from server %q", t.def.Name, t.server)
	}

	return t.def.Description
}

// Parameters converts the remote input schema to the generic schema form.
func (t *remoteTool) Parameters() map[string]interface{} {
	fallback := map[string]interface{}{"type": "object"}

	if t.def.InputSchema.Properties == nil && t.def.InputSchema.Required == nil {
		return fallback
	}

	data, err := json.Marshal(t.def.InputSchema)
	if err != nil {
		return fallback
	}

	var params map[string]interface{}
	if err := json.Unmarshal(data, &params); err != nil {
		return fallback
	}

	return params
}

// Call forwards the invocation to the owning server. Transport errors and
// server-reported failures both come back as ordinary tool errors so the
// turn that triggered them can proceed.
func (t *remoteTool) Call(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = t.def.Name
	req.Params.Arguments = args

	t.logger.Debug("mcp tool call", "server", t.server, "tool", t.def.Name, "full_name", t.fullName)

	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	result, err := t.client.CallTool(callCtx, req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", t.fullName, err)
	}

	content := extractContent(result)
	if result.IsError {
		if content == "" {
			content = "unspecified failure"
		}

		return nil, fmt.Errorf("%s: %s", t.fullName, content)
	}

	return content, nil
}

// extractContent flattens a call result to text. Non-text content blocks are
// carried as their JSON encoding.
func extractContent(result *mcp.CallToolResult) string {
	var parts []string

	for _, c := range result.Content {
		switch v := c.(type) {
		case mcp.TextContent:
			parts = append(parts, v.Text)
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		default:
			if data, err := json.Marshal(v); err == nil {
				parts = append(parts, string(data))
			}
		}
	}

	return strings.Join(parts, "\n")
}

// sanitizeName replaces characters that are not valid in tool names.
func sanitizeName(s string) string {
	var b strings.Builder

	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	return b.String()
}

// envSlice converts an env map to KEY=VALUE form for subprocess startup.
func envSlice(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}

	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}

	return result
}
