package machine

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ImageVersion is the current program image format version.
// Increment when making incompatible changes to the format.
const ImageVersion uint16 = 1

// ImageMagic identifies a program image.
const ImageMagic = "PL0B"

// Image errors. Each wraps ErrInvalidImage.
var (
	ErrInvalidImage    = errors.New("invalid program image")
	ErrInvalidMagic    = fmt.Errorf("%w: magic is not %q", ErrInvalidImage, ImageMagic)
	ErrVersionMismatch = fmt.Errorf("%w: version mismatch", ErrInvalidImage)
)

// image is the CBOR layout of a program.
type image struct {
	Magic   string `cbor:"1,keyasint"`
	Version uint16 `cbor:"2,keyasint"`
	Name    string `cbor:"3,keyasint,omitempty"`
	Code    []Pair `cbor:"4,keyasint"`
	Lines   []int  `cbor:"5,keyasint,omitempty"`
}

var imageEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("machine: failed to create CBOR enc mode: %v", err))
	}
	imageEncMode = em
}

// EncodeImage serializes a program to canonical CBOR.
func EncodeImage(p *Program) ([]byte, error) {
	img := image{
		Magic:   ImageMagic,
		Version: ImageVersion,
		Name:    p.Name,
		Code:    p.Pairs(),
	}
	for _, l := range p.Lines {
		if l > 0 {
			img.Lines = p.Lines
			break
		}
	}
	return imageEncMode.Marshal(img)
}

// DecodeImage deserializes a program image. The instructions go through the
// same load-time checks as a text listing.
func DecodeImage(data []byte, name string) (*Program, error) {
	var img image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidImage, name, err)
	}
	if img.Magic != ImageMagic {
		return nil, fmt.Errorf("%w (got %q)", ErrInvalidMagic, img.Magic)
	}
	if img.Version != ImageVersion {
		return nil, fmt.Errorf("%w: image version %d, supported %d", ErrVersionMismatch, img.Version, ImageVersion)
	}
	if img.Lines != nil && len(img.Lines) != len(img.Code) {
		return nil, fmt.Errorf("%w: %d line entries for %d instructions", ErrInvalidImage, len(img.Lines), len(img.Code))
	}

	source := name
	if img.Name != "" {
		source = img.Name
	}
	b := newBuilder(source)
	for i, pair := range img.Code {
		line := 0
		if img.Lines != nil {
			line = img.Lines[i]
		}
		if err := b.add(pair.Op, pair.M, line); err != nil {
			return nil, err
		}
	}
	return b.prog, nil
}
