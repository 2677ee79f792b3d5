package output

// Renderer interface - Output port
// Converts raw model text into HTML for presentation
type Renderer interface {
	Render(markdown string) (string, error)
}
