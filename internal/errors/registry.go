package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://vpatch.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Tree Errors (E101-E119)
	// ============================================

	"E101": {
		Category: CategoryTree,
		Message:  "Node has both text and children",
		Detail:   "A virtual node describes either a text content or a list of children. When both are set, patching silently prefers one of them and the host tree drifts from the description.",
		DocURL:   docBase + "E101",
	},
	"E102": {
		Category: CategoryTree,
		Message:  "Text node has children",
		Detail:   "A node without a selector is a text node and cannot hold children.",
		DocURL:   docBase + "E102",
	},
	"E103": {
		Category: CategoryTree,
		Message:  "Comment node has children",
		Detail:   "A node with the \"!\" selector is a comment and only its text is rendered.",
		DocURL:   docBase + "E103",
	},
	"E104": {
		Category: CategoryTree,
		Message:  "Duplicate key among siblings",
		Detail:   "Keys identify a child among its siblings. Two siblings with the same key make keyed reordering ambiguous.",
		DocURL:   docBase + "E104",
	},
	"E105": {
		Category: CategoryTree,
		Message:  "Selector has no tag name",
		Detail:   "A selector must start with a tag name; id (#) and class (.) segments follow it, as in div#main.card.",
		DocURL:   docBase + "E105",
	},
	"E106": {
		Category: CategoryTree,
		Message:  "Invalid tree file",
		Detail:   "The tree file could not be decoded into a virtual tree.",
		DocURL:   docBase + "E106",
	},
	"E107": {
		Category: CategoryTree,
		Message:  "No baseline to patch",
		Detail:   "Patch needs the tree returned by the previous cycle and PatchHost needs a host node.",
		DocURL:   docBase + "E107",
	},

	// ============================================
	// Protocol Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryProtocol,
		Message:  "Malformed ops frame",
		Detail:   "The ops frame could not be decoded. The stream is corrupt or was produced by an incompatible version.",
		DocURL:   docBase + "E060",
	},
	"E061": {
		Category: CategoryProtocol,
		Message:  "Unknown node ID in op stream",
		Detail:   "An op referenced a node ID that was never created on this mirror. Ops must be replayed in order from the first frame.",
		DocURL:   docBase + "E061",
	},
	"E062": {
		Category: CategoryProtocol,
		Message:  "WebSocket write failed",
		Detail:   "The ops frame could not be delivered to the client.",
		DocURL:   docBase + "E062",
	},

	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid vpatch.json",
		Detail:   "The configuration file contains invalid JSON.",
		DocURL:   docBase + "E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Unknown host adapter",
		Detail:   "The host adapter must be \"html\" or \"mem\".",
		DocURL:   docBase + "E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Unknown module",
		Detail:   "Supported modules are attributes, class, style, metrics and tracing.",
		DocURL:   docBase + "E122",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "The log level must be one of debug, info, warn or error.",
		DocURL:   docBase + "E123",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Tree file not found",
		Detail:   "The file passed on the command line does not exist.",
		DocURL:   docBase + "E140",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The preview server stopped unexpectedly.",
		DocURL:   docBase + "E141",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Config file already exists",
		Detail:   "vpatch init does not overwrite an existing vpatch.json.",
		DocURL:   docBase + "E142",
	},
}

