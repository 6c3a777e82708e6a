package expr

import "math"

type function struct {
	arity  int
	unary  func(float64) float64
	binary func(float64, float64) float64
}

func fn1(f func(float64) float64) function { return function{arity: 1, unary: f} }

func fn2(f func(float64, float64) float64) function { return function{arity: 2, binary: f} }

// functions is the built-in function table. The trigonometric set matches
// the trigonometric envelope functions (sin, cos, tan, cot, cosec, sec).
var functions = map[string]function{
	"sin":   fn1(math.Sin),
	"cos":   fn1(math.Cos),
	"tan":   fn1(math.Tan),
	"cot":   fn1(func(x float64) float64 { return 1 / math.Tan(x) }),
	"sec":   fn1(func(x float64) float64 { return 1 / math.Cos(x) }),
	"cosec": fn1(func(x float64) float64 { return 1 / math.Sin(x) }),
	"csc":   fn1(func(x float64) float64 { return 1 / math.Sin(x) }),
	"asin":  fn1(math.Asin),
	"acos":  fn1(math.Acos),
	"atan":  fn1(math.Atan),
	"sinh":  fn1(math.Sinh),
	"cosh":  fn1(math.Cosh),
	"tanh":  fn1(math.Tanh),
	"sqrt":  fn1(math.Sqrt),
	"cbrt":  fn1(math.Cbrt),
	"abs":   fn1(math.Abs),
	"exp":   fn1(math.Exp),
	"expm1": fn1(math.Expm1),
	"log":   fn1(math.Log),
	"log2":  fn1(math.Log2),
	"log10": fn1(math.Log10),
	"log1p": fn1(math.Log1p),
	"floor": fn1(math.Floor),
	"ceil":  fn1(math.Ceil),
	"signum": fn1(func(x float64) float64 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		}
		return 0
	}),
	"pow":   fn2(math.Pow),
	"atan2": fn2(math.Atan2),
	"min":   fn2(math.Min),
	"max":   fn2(math.Max),
}

// constants recognised as bare identifiers.
var constants = map[string]float64{
	"pi": math.Pi,
	"π":  math.Pi,
	"e":  math.E,
	"φ":  math.Phi,
}
