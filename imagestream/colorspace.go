package imagestream

import "fmt"

// ColorMode is the pixel layout of a supported colour space.
type ColorMode int

const (
	// ModeUnsupported covers every colour space the package rejects.
	ModeUnsupported ColorMode = iota
	ModeGray
	ModeRGB
)

// Channels returns the samples per pixel, or 0 for ModeUnsupported.
func (m ColorMode) Channels() int {
	switch m {
	case ModeGray:
		return 1
	case ModeRGB:
		return 3
	case ModeUnsupported:
		return 0
	default:
		panic(fmt.Sprintf("imagestream: invalid ColorMode %d", int(m)))
	}
}

func (m ColorMode) String() string {
	switch m {
	case ModeGray:
		return "gray"
	case ModeRGB:
		return "rgb"
	case ModeUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("ColorMode(%d)", int(m))
	}
}

// ColorSpace is a declared colour space. Name keeps the PDF family name
// for diagnostics; it is empty when the image declares none.
type ColorSpace struct {
	Mode ColorMode
	Name string
}

// ParseColorSpace classifies a colour space family name. The inline-image
// abbreviations G and RGB are accepted.
func ParseColorSpace(name string) ColorSpace {
	switch name {
	case "DeviceGray", "G":
		return ColorSpace{Mode: ModeGray, Name: "DeviceGray"}
	case "DeviceRGB", "RGB":
		return ColorSpace{Mode: ModeRGB, Name: "DeviceRGB"}
	default:
		return ColorSpace{Mode: ModeUnsupported, Name: name}
	}
}

func (cs ColorSpace) String() string {
	if cs.Name == "" {
		return "unspecified"
	}
	return cs.Name
}

// checkDepth validates bits per component for a supported mode.
func checkDepth(cs ColorSpace, bpc int) error {
	switch cs.Mode {
	case ModeGray:
		switch bpc {
		case 1, 2, 4, 8:
			return nil
		}
	case ModeRGB:
		if bpc == 8 {
			return nil
		}
	case ModeUnsupported:
		return &UnsupportedColorSpaceError{Space: cs.String()}
	}
	return &UnsupportedBitDepthError{Space: cs.String(), BitsPerComponent: bpc}
}
