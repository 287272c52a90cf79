package input

type Options struct {
	Multipart    bool
	ReadStdin    bool
	JSON         bool
	ResponseType string
	BaseURL      string
}
