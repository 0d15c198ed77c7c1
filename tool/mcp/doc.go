// Package mcp connects Model Context Protocol servers to the capability
// subsystem. Each configured server is dialed once at startup over stdio or
// streamable HTTP, its tool inventory is discovered through the MCP
// handshake, and every remote tool is wrapped as a regular tool.Tool that
// agents can bind by name.
//
// Discovered tools are named "mcp_<server>_<tool>" so bindings stay stable
// across servers that expose identically named tools. Remote calls carry a
// per-call timeout and surface server-side failures as ordinary tool errors.
package mcp
