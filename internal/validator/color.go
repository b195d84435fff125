package validator

import (
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	longHex       = regexp.MustCompile(`^#([0-9a-f]{4}|[0-9a-f]{8})$`)
	colorFunction = regexp.MustCompile(`^(rgba?|hsla?|hwb|lab|lch|oklab|oklch)\(\s*[-+0-9.%a-z\s,/]+\)$`)
	cssVariable   = regexp.MustCompile(`^var\(\s*--[a-z0-9_-]+\s*(,.*)?\)$`)
	gradient      = regexp.MustCompile(`^(repeating-)?(linear|radial|conic)-gradient\(.*\)$`)
)

var colorKeywords = make(map[string]bool)

func init() {
	names := `transparent currentcolor inherit initial unset
aliceblue antiquewhite aqua aquamarine azure beige bisque black blanchedalmond blue blueviolet brown
burlywood cadetblue chartreuse chocolate coral cornflowerblue cornsilk crimson cyan darkblue darkcyan
darkgoldenrod darkgray darkgreen darkgrey darkkhaki darkmagenta darkolivegreen darkorange darkorchid
darkred darksalmon darkseagreen darkslateblue darkslategray darkslategrey darkturquoise darkviolet
deeppink deepskyblue dimgray dimgrey dodgerblue firebrick floralwhite forestgreen fuchsia gainsboro
ghostwhite gold goldenrod gray green greenyellow grey honeydew hotpink indianred indigo ivory khaki
lavender lavenderblush lawngreen lemonchiffon lightblue lightcoral lightcyan lightgoldenrodyellow
lightgray lightgreen lightgrey lightpink lightsalmon lightseagreen lightskyblue lightslategray
lightslategrey lightsteelblue lightyellow lime limegreen linen magenta maroon mediumaquamarine
mediumblue mediumorchid mediumpurple mediumseagreen mediumslateblue mediumspringgreen
mediumturquoise mediumvioletred midnightblue mintcream mistyrose moccasin navajowhite navy oldlace
olive olivedrab orange orangered orchid palegoldenrod palegreen paleturquoise palevioletred
papayawhip peachpuff peru pink plum powderblue purple rebeccapurple red rosybrown royalblue
saddlebrown salmon sandybrown seagreen seashell sienna silver skyblue slateblue slategray slategrey
snow springgreen steelblue tan teal thistle tomato turquoise violet wheat white whitesmoke yellow
yellowgreen`
	for _, n := range strings.Fields(names) {
		colorKeywords[n] = true
	}
}

// IsColor reports whether s is written like a CSS colour value. The check is
// purely syntactic; nothing is rendered.
func IsColor(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return false
	case strings.HasPrefix(s, "#"):
		if len(s) == 4 || len(s) == 7 {
			_, err := colorful.Hex(s)
			return err == nil
		}
		return longHex.MatchString(s)
	case colorKeywords[s]:
		return true
	}
	return colorFunction.MatchString(s) || cssVariable.MatchString(s) || gradient.MatchString(s)
}
