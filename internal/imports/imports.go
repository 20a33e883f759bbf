// Package imports pulls in every tool package so their init() registration
// runs before the server or CLI enumerates the registry.
package imports

import (
	_ "github.com/sammcj/mcp-base64/internal/tools/base64convert"
)
