// ABOUTME: Screen routing gated on the session state.
// ABOUTME: Only the sign-in screen is reachable without a session.
package auth

// Screen is a top-level page of the application.
type Screen string

const (
	ScreenSignIn  Screen = "signin"
	ScreenHome    Screen = "home"
	ScreenWeight  Screen = "weight"
	ScreenDiet    Screen = "diet"
	ScreenFitness Screen = "fitness"
	ScreenReport  Screen = "report"
)

// publicScreens is the allow-list of screens reachable while signed out.
var publicScreens = map[Screen]bool{
	ScreenSignIn: true,
}

// Route resolves the screen actually shown for a requested one. Anything
// outside the allow-list needs an Authenticated gate; a signed-in user
// asking for the sign-in screen lands on Home.
func (g *Gate) Route(requested Screen) Screen {
	authed := g.State() == StateAuthenticated
	switch {
	case publicScreens[requested] && authed:
		return ScreenHome
	case publicScreens[requested]:
		return requested
	case authed:
		return requested
	default:
		return ScreenSignIn
	}
}
