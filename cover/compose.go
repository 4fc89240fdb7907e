package cover

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const jpegQuality = 95

// rescale fits an arbitrary source image to the cover dimensions.
func rescale(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// shadeBottom darkens the lower band of the image so light photos still
// carry readable title text.
func shadeBottom(img *image.RGBA, bandHeight int) {
	bounds := img.Bounds()
	start := bounds.Dy() - bandHeight
	if start < 0 {
		start = 0
	}
	for y := start; y < bounds.Dy(); y++ {
		// 0 at the band's top edge up to ~70% darkening at the bottom.
		alpha := (y - start) * 180 / bandHeight
		for x := 0; x < bounds.Dx(); x++ {
			r, g, b, a := img.At(x, y).RGBA()
			scale := uint32(255 - alpha)
			img.Set(x, y, color.RGBA{
				R: uint8(r >> 8 * scale / 255),
				G: uint8(g >> 8 * scale / 255),
				B: uint8(b >> 8 * scale / 255),
				A: uint8(a >> 8),
			})
		}
	}
}

// drawTitle renders the title centered at the given baseline with a small
// drop shadow.
func drawTitle(img *image.RGBA, title string, face font.Face, baseline fixed.Int26_6, textColor, shadowColor color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(shadowColor),
		Face: face,
	}
	width := d.MeasureString(title)
	x := (fixed.I(img.Bounds().Dx()) - width) / 2
	if x < 0 {
		x = fixed.I(10)
	}

	d.Dot = fixed.Point26_6{X: x + fixed.I(2), Y: baseline + fixed.I(2)}
	d.DrawString(title)

	d.Src = image.NewUniform(textColor)
	d.Dot = fixed.Point26_6{X: x, Y: baseline}
	d.DrawString(title)
}

// saveJPEG writes the cover under outputDir as cover_<timestamp>.jpg.
func saveJPEG(img image.Image, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create cover output dir: %w", err)
	}
	path := filepath.Join(outputDir, fmt.Sprintf("cover_%s.jpg", time.Now().Format("20060102_150405")))

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := jpeg.Encode(file, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode cover jpeg: %w", err)
	}
	return path, nil
}
