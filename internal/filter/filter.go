package filter

// Filter identifies a per-byte text transformation.
type Filter int

const (
	Identity Filter = iota
	Uppercase
	Lowercase
)

// Wire names understood by the server.
const (
	NameIdentity  = "null"
	NameUppercase = "upper"
	NameLowercase = "lower"
)

// String returns the wire name of the filter
func (f Filter) String() string {
	switch f {
	case Uppercase:
		return NameUppercase
	case Lowercase:
		return NameLowercase
	default:
		return NameIdentity
	}
}

var table = [...]func(byte) byte{
	Identity:  identity,
	Uppercase: upper,
	Lowercase: lower,
}

// Resolve maps a filter name to a Filter. Unknown names, including the empty
// string, resolve to Identity.
func Resolve(name string) Filter {
	switch name {
	case NameUppercase:
		return Uppercase
	case NameLowercase:
		return Lowercase
	default:
		return Identity
	}
}

// Valid reports whether name is one of the wire names a client may send.
func Valid(name string) bool {
	switch name {
	case NameUppercase, NameLowercase, NameIdentity:
		return true
	}
	return false
}

// Names returns the accepted wire names.
func Names() []string {
	return []string{NameUppercase, NameLowercase, NameIdentity}
}

// Func returns the per-byte function for f.
func Func(f Filter) func(byte) byte {
	if f < 0 || int(f) >= len(table) {
		return identity
	}
	return table[f]
}

// Apply transforms input byte by byte. The result always has the same length
// as input.
func Apply(f Filter, input string) string {
	fn := Func(f)
	out := make([]byte, len(input))
	for i := 0; i < len(input); i++ {
		out[i] = fn(input[i])
	}
	return string(out)
}

func identity(c byte) byte { return c }

func upper(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
