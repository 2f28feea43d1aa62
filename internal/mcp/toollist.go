// ABOUTME: Static tool descriptors returned by tools/list
package mcp

type toolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func schemaObject(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringArraySchema(description string) map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": description}
}

func handleToolsList() any {
	tools := []toolDescriptor{
		{
			Name:        "commitmux_search",
			Description: "Full-text search over commit subjects, bodies, and patch previews across indexed repos.",
			InputSchema: schemaObject(map[string]any{
				"query":  map[string]any{"type": "string", "description": "FTS5 query syntax"},
				"since":  map[string]any{"type": "integer", "description": "Unix timestamp lower bound on author time"},
				"repos":  stringArraySchema("Restrict to these repo names"),
				"paths":  stringArraySchema("Restrict to commits touching a path containing any of these substrings"),
				"limit":  map[string]any{"type": "integer", "description": "Max results, default 20"},
			}, []string{"query"}),
		},
		{
			Name:        "commitmux_touches",
			Description: "Find commits that touched a path matching a substring.",
			InputSchema: schemaObject(map[string]any{
				"path_glob": map[string]any{"type": "string", "description": "Substring to match against changed file paths"},
				"since":     map[string]any{"type": "integer"},
				"repos":     stringArraySchema("Restrict to these repo names"),
				"limit":     map[string]any{"type": "integer", "description": "Max results, default 50"},
			}, []string{"path_glob"}),
		},
		{
			Name:        "commitmux_get_commit",
			Description: "Resolve a repo name and commit sha (or sha prefix) to full commit metadata.",
			InputSchema: schemaObject(map[string]any{
				"repo": map[string]any{"type": "string"},
				"sha":  map[string]any{"type": "string"},
			}, []string{"repo", "sha"}),
		},
		{
			Name:        "commitmux_get_patch",
			Description: "Return the unified diff text for a commit.",
			InputSchema: schemaObject(map[string]any{
				"repo":      map[string]any{"type": "string"},
				"sha":       map[string]any{"type": "string"},
				"max_bytes": map[string]any{"type": "integer", "description": "Truncate the returned text to this many characters"},
			}, []string{"repo", "sha"}),
		},
		{
			Name:        "commitmux_search_semantic",
			Description: "Hybrid kNN semantic search over commit embeddings.",
			InputSchema: schemaObject(map[string]any{
				"query": map[string]any{"type": "string", "description": "Natural-language query, embedded before search"},
				"since": map[string]any{"type": "integer"},
				"repos": stringArraySchema("Restrict to these repo names"),
				"limit": map[string]any{"type": "integer", "description": "Max results, default 10"},
			}, []string{"query"}),
		},
		{
			Name:        "commitmux_list_repos",
			Description: "List registered repos with indexed commit counts and last-sync times.",
			InputSchema: schemaObject(map[string]any{}, nil),
		},
	}
	return map[string]any{"tools": tools}
}
