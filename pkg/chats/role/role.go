// Package role names who produced a message in a studio conversation.
package role

// Role is the author of a message. Providers translate it to their own wire
// names.
type Role string

const (
	System    Role = "system"
	User      Role = "user"
	Assistant Role = "assistant"
	Tool      Role = "tool"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == System || r == User || r == Assistant || r == Tool
}

func (r Role) String() string { return string(r) }
