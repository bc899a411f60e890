package stamp

import (
	"fmt"
	"math"

	"github.com/barasher/go-exiftool"
)

// Codec reads and writes the photo metadata fields this tool touches.
type Codec interface {
	Read(path string) (Photo, error)
	Write(path string, r Result) error
}

// ExifCodec is a Codec backed by an exiftool subprocess.
type ExifCodec struct {
	et *exiftool.Exiftool
}

// NewExifCodec starts an exiftool session. Call Close when done.
func NewExifCodec() (*ExifCodec, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("exiftool: %w", err)
	}
	return &ExifCodec{et: et}, nil
}

// Close shuts down the exiftool session.
func (c *ExifCodec) Close() error {
	return c.et.Close()
}

// Read extracts the capture timestamp and GPS presence for one photo.
func (c *ExifCodec) Read(path string) (Photo, error) {
	fis := c.et.ExtractMetadata(path)
	fi := fis[0]
	if fi.Err != nil {
		return Photo{}, fmt.Errorf("extract fail for %q: %w", path, fi.Err)
	}

	p := Photo{Path: path}

	// a missing timestamp is a skip condition, not an error
	if ds, err := fi.GetString("DateTimeOriginal"); err == nil {
		p.DateTimeOriginal = ds
	}

	_, hasLat := fi.Fields["GPSLatitude"]
	_, hasLon := fi.Fields["GPSLongitude"]
	p.HasGPS = hasLat && hasLon

	return p, nil
}

// Write rewrites the date/time, offset, and GPS fields of one photo in a
// single exiftool call. The full field set is assembled up front so a
// failure never leaves the file half-written.
//
// Exiftool tag names differ from the raw EXIF ones: ModifyDate is the
// 0th-IFD DateTime and CreateDate is DateTimeDigitized.
func (c *ExifCodec) Write(path string, r Result) error {
	fms := c.et.ExtractMetadata(path)
	if fms[0].Err != nil {
		return fmt.Errorf("extract fail for %q: %w", path, fms[0].Err)
	}

	fms[0].SetString("ModifyDate", r.LocalTime)
	fms[0].SetString("DateTimeOriginal", r.LocalTime)
	fms[0].SetString("CreateDate", r.LocalTime)

	fms[0].SetString("OffsetTime", r.Offset)
	fms[0].SetString("OffsetTimeOriginal", r.Offset)
	fms[0].SetString("OffsetTimeDigitized", r.Offset)

	fms[0].SetString("GPSLatitude", toDMS(r.Lat).String())
	fms[0].SetString("GPSLatitudeRef", latRef(r.Lat))
	fms[0].SetString("GPSLongitude", toDMS(r.Lon).String())
	fms[0].SetString("GPSLongitudeRef", lonRef(r.Lon))

	c.et.WriteMetadata(fms)
	if fms[0].Err != nil {
		return fmt.Errorf("write metadata for %q: %w", path, fms[0].Err)
	}
	return nil
}

// DMS is the EXIF degree/minute/second encoding of one coordinate
// component. Seconds are a rational over 100, giving 2 decimal places.
type DMS struct {
	Deg    int
	Min    int
	SecNum int // seconds x 100
	SecDen int // always 100
}

// toDMS encodes the absolute value of a decimal-degree coordinate.
// Hemisphere is carried separately by the Ref tags.
func toDMS(v float64) DMS {
	abs := math.Abs(v)
	deg := int(abs)
	minf := (abs - float64(deg)) * 60
	min := int(minf)
	sec := (minf - float64(min)) * 60
	return DMS{Deg: deg, Min: min, SecNum: int(sec * 100), SecDen: 100}
}

// Decimal converts back to decimal degrees (always non-negative).
func (d DMS) Decimal() float64 {
	return float64(d.Deg) + float64(d.Min)/60 + float64(d.SecNum)/float64(d.SecDen)/3600
}

func (d DMS) String() string {
	return fmt.Sprintf("%d %d %.2f", d.Deg, d.Min, float64(d.SecNum)/float64(d.SecDen))
}

func latRef(lat float64) string {
	if lat >= 0 {
		return "N"
	}
	return "S"
}

func lonRef(lon float64) string {
	if lon >= 0 {
		return "E"
	}
	return "W"
}
