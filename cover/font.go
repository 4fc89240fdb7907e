package cover

import (
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Candidate system fonts, CJK-capable ones first so Chinese titles render.
var fontPaths = []string{
	"/System/Library/Fonts/PingFang.ttc",
	"/System/Library/Fonts/STHeiti Light.ttc",
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"C:\\Windows\\Fonts\\msyh.ttc",
}

// loadTitleFace resolves a face for the title text: first system font that
// parses, then the embedded Go regular face, then the fixed bitmap face.
func loadTitleFace(size float64) font.Face {
	opts := &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull}

	for _, p := range fontPaths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if face := faceFromFontData(data, opts); face != nil {
			return face
		}
	}

	if f, err := opentype.Parse(goregular.TTF); err == nil {
		if face, err := opentype.NewFace(f, opts); err == nil {
			return face
		}
	}
	return basicfont.Face7x13
}

func faceFromFontData(data []byte, opts *opentype.FaceOptions) font.Face {
	if col, err := opentype.ParseCollection(data); err == nil {
		if f, err := col.Font(0); err == nil {
			if face, err := opentype.NewFace(f, opts); err == nil {
				return face
			}
		}
	}
	if f, err := opentype.Parse(data); err == nil {
		if face, err := opentype.NewFace(f, opts); err == nil {
			return face
		}
	}
	return nil
}
