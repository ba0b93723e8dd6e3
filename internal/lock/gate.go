package lock

// View is what the screen-lock gate renders for a protected screen.
type View int

const (
	// ViewLoading shows only a loading indicator.
	ViewLoading View = iota
	// ViewContent shows the protected screen itself.
	ViewContent
	// ViewLockScreen shows the lock screen instead of the content.
	ViewLockScreen
)

func (v View) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewLockScreen:
		return "lock_screen"
	default:
		return "content"
	}
}

// Decide is the gate: given the auth state and the runtime lock state it
// picks what to render. The lock only applies to authenticated sessions, so
// an anonymous visitor always sees the content.
func Decide(authLoading bool, userID string, st State) View {
	if authLoading || st.Loading {
		return ViewLoading
	}
	if userID == "" {
		return ViewContent
	}
	if st.IsLocked {
		return ViewLockScreen
	}
	return ViewContent
}
