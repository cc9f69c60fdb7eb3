package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the non-Python languages:
// - Go: struct and interface types are classes, methods attach to receivers,
//   methods on types from other files stay top-level functions
// - JavaScript: exported functions pick up comments above the export
// - TypeScript: interfaces hold method signatures
// - JavaScript, TypeScript, TSX: functions bound with const, var, or class
//   fields (arrow functions and function expressions) are functions
// - Rust: impl blocks attach methods to their struct, attributes between
//   a doc comment and its item are skipped
// - Java: Javadoc, constructors as methods, method invocations
// - C: names through pointer declarators
// - Ruby and PHP: classes with methods and calls

func parseWith(t *testing.T, lang *LanguageConfig, source string) []Entity {
	t.Helper()
	entities, err := newTreeSitterParser(lang).Parse("test"+lang.Extensions[0], []byte(source))
	require.NoError(t, err)
	return entities
}

func names(entities []Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Name)
	}
	return out
}

func TestGoParser(t *testing.T) {
	t.Parallel()

	source := `package shapes

// Shape is anything with an area.
type Shape interface {
	Area() float64
}

// Rect is a rectangle.
type Rect struct {
	W, H float64
}

type Meters float64

// Area returns the rectangle area.
func (r *Rect) Area() float64 {
	return mul(r.W, r.H)
}

func mul(a, b float64) float64 {
	return a * b
}

func (o Orphan) Name() string {
	return fmt.Sprint(o)
}
`
	entities := parseWith(t, Go, source)
	assert.Equal(t, []string{"Shape", "Rect", "mul", "Name"}, names(entities))

	shape := entities[0]
	assert.Equal(t, KindClass, shape.Kind)
	assert.Equal(t, "Shape is anything with an area.", shape.Docstring)
	require.Len(t, shape.Children, 1)
	assert.Equal(t, "Area", shape.Children[0].Name)
	assert.Equal(t, KindMethod, shape.Children[0].Kind)

	rect := entities[1]
	assert.Equal(t, "Rect is a rectangle.", rect.Docstring)
	require.Len(t, rect.Children, 1)
	area := rect.Children[0]
	assert.Equal(t, KindMethod, area.Kind)
	assert.Equal(t, "Area returns the rectangle area.", area.Docstring)
	assert.Equal(t, "func (r *Rect) Area() float64", area.Signature)
	assert.Equal(t, []string{"mul"}, area.Calls)

	assert.Equal(t, KindFunction, entities[2].Kind)
	orphan := entities[3]
	assert.Equal(t, KindFunction, orphan.Kind)
	assert.Equal(t, []string{"Sprint"}, orphan.Calls)
}

func TestJavaScriptParser(t *testing.T) {
	t.Parallel()

	source := `// Greets someone.
export function greet(name) {
  return format(name);
}

class Greeter {
  /** Says hello. */
  hello() {
    console.log(greet("x"));
  }
}
`
	entities := parseWith(t, JavaScript, source)
	require.Equal(t, []string{"greet", "Greeter"}, names(entities))

	greet := entities[0]
	assert.Equal(t, KindFunction, greet.Kind)
	assert.Equal(t, "Greets someone.", greet.Docstring)
	assert.Equal(t, "function greet(name)", greet.Signature)
	assert.Equal(t, []string{"format"}, greet.Calls)

	greeter := entities[1]
	require.Len(t, greeter.Children, 1)
	hello := greeter.Children[0]
	assert.Equal(t, KindMethod, hello.Kind)
	assert.Equal(t, "Says hello.", hello.Docstring)
	assert.Equal(t, []string{"log", "greet"}, hello.Calls)
}

func TestECMAParsers_BoundFunctions(t *testing.T) {
	t.Parallel()

	source := `// Loads a user.
export const fetchUser = async (id) => {
  return request(id);
};

const helper = function () {
  return 1;
};

function classic() {
  return helper();
}

const { a, b } = pair;
const limit = 10;

class Widget {
  onClick = () => {
    this.render();
  };
}
`
	for _, lang := range []*LanguageConfig{JavaScript, TypeScript, TSX} {
		t.Run(lang.Name, func(t *testing.T) {
			t.Parallel()

			entities := parseWith(t, lang, source)
			require.Equal(t, []string{"fetchUser", "helper", "classic", "Widget"}, names(entities))

			fetchUser := entities[0]
			assert.Equal(t, KindFunction, fetchUser.Kind)
			assert.Equal(t, "Loads a user.", fetchUser.Docstring)
			assert.Equal(t, "const fetchUser = async (id) =>", fetchUser.Signature)
			assert.Equal(t, []string{"request"}, fetchUser.Calls)
			assert.Equal(t, 2, fetchUser.StartLine)
			assert.Equal(t, 4, fetchUser.EndLine)

			helper := entities[1]
			assert.Equal(t, KindFunction, helper.Kind)
			assert.Equal(t, "const helper = function ()", helper.Signature)
			assert.Equal(t, 6, helper.StartLine)
			assert.Equal(t, 8, helper.EndLine)

			assert.Equal(t, KindFunction, entities[2].Kind)
			assert.Equal(t, []string{"helper"}, entities[2].Calls)

			widget := entities[3]
			require.Len(t, widget.Children, 1)
			onClick := widget.Children[0]
			assert.Equal(t, "onClick", onClick.Name)
			assert.Equal(t, KindMethod, onClick.Kind)
			assert.Equal(t, []string{"render"}, onClick.Calls)
		})
	}
}

func TestTypeScriptParser(t *testing.T) {
	t.Parallel()

	source := `interface Store {
  get(key: string): string;
}

export class Memory implements Store {
  get(key: string): string {
    return this.read(key);
  }
}
`
	entities := parseWith(t, TypeScript, source)
	require.Equal(t, []string{"Store", "Memory"}, names(entities))

	store := entities[0]
	require.Len(t, store.Children, 1)
	assert.Equal(t, "get", store.Children[0].Name)
	assert.Equal(t, "get(key: string): string", store.Children[0].Signature)

	memory := entities[1]
	require.Len(t, memory.Children, 1)
	assert.Equal(t, []string{"read"}, memory.Children[0].Calls)
}

func TestRustParser(t *testing.T) {
	t.Parallel()

	source := `/// A point.
#[derive(Debug)]
pub struct Point {
    x: i32,
}

impl Point {
    /// Creates a point.
    pub fn new(x: i32) -> Self {
        Point::clamp(x);
        Self { x }
    }
}

fn main() {
    let p = Point::new(1);
    println!("{:?}", p);
}
`
	entities := parseWith(t, Rust, source)
	require.Equal(t, []string{"Point", "main"}, names(entities))

	point := entities[0]
	assert.Equal(t, KindClass, point.Kind)
	assert.Equal(t, "A point.", point.Docstring)
	require.Len(t, point.Children, 1)

	ctor := point.Children[0]
	assert.Equal(t, "new", ctor.Name)
	assert.Equal(t, KindMethod, ctor.Kind)
	assert.Equal(t, "Creates a point.", ctor.Docstring)
	assert.Equal(t, []string{"clamp"}, ctor.Calls)

	assert.Equal(t, []string{"new"}, entities[1].Calls)
}

func TestJavaParser(t *testing.T) {
	t.Parallel()

	source := `/** Adds numbers. */
public class Adder {
    /** Sums two ints. */
    public int sum(int a, int b) {
        return Math.addExact(a, b);
    }

    public Adder() {
        reset();
    }
}
`
	entities := parseWith(t, Java, source)
	require.Len(t, entities, 1)

	adder := entities[0]
	assert.Equal(t, "Adder", adder.Name)
	assert.Equal(t, "Adds numbers.", adder.Docstring)
	require.Equal(t, []string{"sum", "Adder"}, names(adder.Children))

	sum := adder.Children[0]
	assert.Equal(t, "public int sum(int a, int b)", sum.Signature)
	assert.Equal(t, "Sums two ints.", sum.Docstring)
	assert.Equal(t, []string{"addExact"}, sum.Calls)
	assert.Equal(t, []string{"reset"}, adder.Children[1].Calls)
}

func TestCParser(t *testing.T) {
	t.Parallel()

	source := `// Adds two ints.
int add(int a, int b) {
    return a + b;
}

static char *name(void) {
    return strdup(label());
}
`
	entities := parseWith(t, C, source)
	require.Equal(t, []string{"add", "name"}, names(entities))
	assert.Equal(t, "Adds two ints.", entities[0].Docstring)
	assert.Equal(t, "int add(int a, int b)", entities[0].Signature)
	assert.Equal(t, []string{"strdup", "label"}, entities[1].Calls)
}

func TestRubyParser(t *testing.T) {
	t.Parallel()

	source := `# Greeter greets.
class Greeter
  def hi(name)
    format_name(name)
  end
end

def top
  Greeter.new
end
`
	entities := parseWith(t, Ruby, source)
	require.Equal(t, []string{"Greeter", "top"}, names(entities))

	greeter := entities[0]
	assert.Equal(t, "Greeter greets.", greeter.Docstring)
	require.Len(t, greeter.Children, 1)
	assert.Equal(t, "hi", greeter.Children[0].Name)
	assert.Equal(t, KindMethod, greeter.Children[0].Kind)
	assert.Contains(t, greeter.Children[0].Calls, "format_name")
	assert.Contains(t, entities[1].Calls, "new")
}

func TestPHPParser(t *testing.T) {
	t.Parallel()

	source := `<?php
class Formatter {
    public function format($v) {
        return strtoupper($this->clean($v));
    }
}

function helper() {
    return Formatter::make();
}
`
	entities := parseWith(t, PHP, source)
	require.Equal(t, []string{"Formatter", "helper"}, names(entities))

	formatter := entities[0]
	require.Len(t, formatter.Children, 1)
	assert.Equal(t, "format", formatter.Children[0].Name)
	assert.Equal(t, []string{"strtoupper", "clean"}, formatter.Children[0].Calls)
	assert.Equal(t, []string{"make"}, entities[1].Calls)
}
