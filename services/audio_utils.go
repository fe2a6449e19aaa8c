package services

import (
	"io"

	tcmp3 "github.com/tcolgate/mp3"
)

// MP3Duration tính thời lượng MP3 (giây) bằng cách duyệt qua các frame
func MP3Duration(r io.Reader) (float64, error) {
	var (
		dur     float64
		dec     = tcmp3.NewDecoder(r)
		frame   tcmp3.Frame
		skipped int
		frames  int
	)

	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			if err == io.EOF {
				break
			}
			return 0, err
		}
		frames++
		dur += frame.Duration().Seconds()
	}
	if frames == 0 {
		return 0, io.ErrUnexpectedEOF
	}

	return dur, nil
}
