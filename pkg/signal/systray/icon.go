package systray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"

	"github.com/blaubaer/stfu/pkg/session"
)

const iconSize = 32

var (
	colorIdle      = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	colorActive    = color.RGBA{R: 0xff, G: 0x32, B: 0x32, A: 0xff}
	colorModulated = color.RGBA{R: 0xb0, G: 0x20, B: 0xff, A: 0xff}
)

// Icons contains one icon per phase in the format the tray of the current
// platform expects.
type Icons map[session.Phase][]byte

func NewIcons() (Icons, error) {
	result := Icons{}
	for phase, c := range map[session.Phase]color.RGBA{
		session.PhaseIdle:            colorIdle,
		session.PhaseActive:          colorActive,
		session.PhaseActiveModulated: colorModulated,
	} {
		b, err := encodeIcon(drawDot(c, phase != session.PhaseIdle), runtime.GOOS == "windows")
		if err != nil {
			return nil, err
		}
		result[phase] = b
	}
	return result, nil
}

// drawDot draws a ring, filled if requested.
func drawDot(c color.RGBA, filled bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	center := float64(iconSize-1) / 2
	outer := float64(iconSize)/2 - 1
	inner := outer - 4
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			d := dx*dx + dy*dy
			if d <= outer*outer && (filled || d >= inner*inner) {
				img.SetRGBA(x, y, c)
			}
		}
	}
	return img
}

// encodeIcon encodes img as PNG. If asIco is true the PNG is wrapped into an
// ICO container which is supported since Windows Vista.
func encodeIcon(img image.Image, asIco bool) ([]byte, error) {
	var p bytes.Buffer
	if err := png.Encode(&p, img); err != nil {
		return nil, err
	}
	if !asIco {
		return p.Bytes(), nil
	}

	bounds := img.Bounds()
	var buf bytes.Buffer
	header := struct {
		Reserved, Type, Count uint16
	}{0, 1, 1}
	entry := struct {
		Width, Height, Colors, Reserved uint8
		Planes, BitCount                uint16
		Size, Offset                    uint32
	}{
		Width:    uint8(bounds.Dx()),
		Height:   uint8(bounds.Dy()),
		Planes:   1,
		BitCount: 32,
		Size:     uint32(p.Len()),
		Offset:   6 + 16,
	}
	if err := binary.Write(&buf, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, entry); err != nil {
		return nil, err
	}
	buf.Write(p.Bytes())
	return buf.Bytes(), nil
}
