package pack

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"mcmovie/internal/flipbook"
)

//go:embed server_form.json.tmpl
var serverFormSource string

var serverFormTemplate = template.Must(template.New("server_form").Parse(serverFormSource))

// TexturePath is the engine resource path of the sprite sheet, without extension.
const TexturePath = "textures/ui/movie"

// FormTitle is the server form title that swaps in the movie layout.
const FormTitle = "Custom Form"

// ServerForm renders the JSON UI server form that binds the flip book to a
// frame of frameWidth x frameHeight.
func ServerForm(frameWidth, frameHeight int) ([]byte, error) {
	if frameWidth <= 0 || frameHeight <= 0 {
		return nil, fmt.Errorf("server form: invalid frame size %dx%d", frameWidth, frameHeight)
	}
	var buf bytes.Buffer
	err := serverFormTemplate.Execute(&buf, struct {
		FormTitle   string
		Texture     string
		AnimType    string
		FrameWidth  int
		FrameHeight int
	}{
		FormTitle:   FormTitle,
		Texture:     TexturePath,
		AnimType:    flipbook.AnimType,
		FrameWidth:  frameWidth,
		FrameHeight: frameHeight,
	})
	if err != nil {
		return nil, fmt.Errorf("server form: %w", err)
	}
	return buf.Bytes(), nil
}
