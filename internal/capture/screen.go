package capture

// Screen identifies which kiosk screen is active for a session. The happy
// path runs top to bottom; the analysis failure branch returns to
// PhotoPreview and the retake branch returns to CameraActive.
type Screen string

// Kiosk screens in flow order
const (
	ScreenPreferences     Screen = "preferences"
	ScreenCameraReady     Screen = "camera_ready"
	ScreenCameraActive    Screen = "camera_active"
	ScreenPhotoPreview    Screen = "photo_preview"
	ScreenAnalyzing       Screen = "analyzing"
	ScreenAnalysisResults Screen = "analysis_results"
	ScreenContactForm     Screen = "contact_form"
	ScreenProcessing      Screen = "processing"
	ScreenResponseImage   Screen = "response_image"
	ScreenThankYou        Screen = "thank_you"
)

// String implements fmt.Stringer.
func (s Screen) String() string {
	return string(s)
}
