// Package serial converts object graphs to and from a tagged node format,
// preserving shared references and cycles.
//
// Every value becomes a Node whose tag names its kind. Values with an
// identity (dates, patterns, sets, maps, objects, arrays and registered
// class instances) get a dense id the first time a depth-first walk meets
// them; each later meeting emits a back-reference instead. Decoding creates
// each container before filling it, so references inside a value resolve
// to the value itself.
//
// Supported kinds, in encoding precedence:
//
//	*time.Time        Date      (epoch milliseconds, decoded in UTC)
//	*regexp.Regexp    RegExp
//	*Set              Set
//	*Map              Map       (keys are full nodes)
//	registered *T     user:<N>  (marked fields only)
//	map[string]V      Object    (keys sorted)
//	[]V               Array
//	Symbol            symbol
//	bool              boolean
//	NaN               NaN
//	numeric kinds     number    (decodes as float64)
//	*big.Int          bigint    (decimal text)
//	string            string
//	nil               null
//	Undefined         undefined
//
// Any other value fails with *UnsupportedTypeError.
//
// # Documents
//
// Marshal writes the root node as JSON:
//
//	{"t":"Object","i":0,"v":[["self",{"t":"Object","r":0}]]}
//
// # User classes
//
// A struct takes part only through its marked fields:
//
//	def := serial.MustDefine[Point](serial.DefaultClasses, "Point", nil)
//	serial.MustField(def, "x", func(p *Point) float64 { return p.X }, func(p *Point, v float64) { p.X = v })
//
// Decoding a class name that is not defined fails with *UnknownClassError.
package serial
