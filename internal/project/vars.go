package project

import "regexp"

var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Substitute replaces ${name} placeholders with their value. Unknown names are
// left untouched.
func Substitute(text string, vars map[string]string) string {
	if len(vars) == 0 {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		if value, ok := vars[match[2:len(match)-1]]; ok {
			return value
		}
		return match
	})
}

// Variables merges user variables with the built-in github_username and
// dojo_username. Built-ins win; empty built-ins are not defined.
func Variables(githubUsername, dojoUsername string, extra map[string]string) map[string]string {
	vars := make(map[string]string, len(extra)+2)
	for name, value := range extra {
		vars[name] = value
	}
	if githubUsername != "" {
		vars["github_username"] = githubUsername
	}
	if dojoUsername != "" {
		vars["dojo_username"] = dojoUsername
	}
	return vars
}
