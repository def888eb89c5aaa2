// Package tools implements the built-in tools served by riskmcp.
//
// calculate_sum and risk_gauge are always available. embed_texts and
// analyze_property are registered only when their backing service is
// configured in Options.
package tools
