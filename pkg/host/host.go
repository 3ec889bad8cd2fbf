// Package host defines the primitive operations the reconciler uses to
// mutate a rendered tree.
//
// The reconciler never looks inside a host node. It only passes handles
// back to the Adapter that created them, so any conforming adapter is
// interchangeable: a live HTML tree (see htmlhost), an in-memory tree for
// tests (see memhost), or a recorder that streams mutations to a remote
// client (see the remote package).
package host

// Node is an opaque handle to a node of the host tree.
// Adapters must return comparable handles (typically pointers) and a nil
// Node means "no node".
type Node any

// Adapter is the set of primitive, synchronous host operations.
//
// All operations are assumed infallible for valid inputs. Adapter failures
// are not recovered; a panic raised by an adapter propagates to the caller
// of the reconcile cycle unmodified.
type Adapter interface {
	// CreateElement creates a detached element with the given tag.
	CreateElement(tag string) Node

	// CreateElementNS creates a detached element in the namespace ns.
	CreateElementNS(ns, tag string) Node

	// CreateTextNode creates a detached text node.
	CreateTextNode(text string) Node

	// CreateComment creates a detached comment node.
	CreateComment(text string) Node

	// InsertBefore inserts node into parent before ref. A nil ref appends.
	// If node is already attached somewhere it is moved.
	InsertBefore(parent, node, ref Node)

	// RemoveChild detaches child from parent.
	RemoveChild(parent, child Node)

	// AppendChild appends child as the last child of parent.
	AppendChild(parent, child Node)

	// ParentNode returns the parent of n, or nil.
	ParentNode(n Node) Node

	// NextSibling returns the sibling following n, or nil.
	NextSibling(n Node) Node

	// TagName returns the tag name of an element, or "" for non-elements.
	TagName(n Node) string

	// SetTextContent replaces all content of n with text.
	SetTextContent(n Node, text string)
}

// Attributer is an optional Adapter capability for reading and writing
// element attributes. The reconciler uses it for the id and class segments
// of selectors; attribute, class and style modules require it.
type Attributer interface {
	GetAttribute(n Node, name string) (string, bool)
	SetAttribute(n Node, name, value string)
	RemoveAttribute(n Node, name string)
}

// IsElement reports whether n is an element of adapter a.
func IsElement(a Adapter, n Node) bool {
	return n != nil && a.TagName(n) != ""
}

// Namespace URIs understood by the bundled adapters.
const (
	NamespaceHTML  = "http://www.w3.org/1999/xhtml"
	NamespaceSVG   = "http://www.w3.org/2000/svg"
	NamespaceMath  = "http://www.w3.org/1998/Math/MathML"
	NamespaceXLink = "http://www.w3.org/1999/xlink"
	NamespaceXML   = "http://www.w3.org/XML/1998/namespace"
)
