package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Assessment ────────────────────────────────────────────────────
	ErrSessionNotInProgress ErrCode = "SESSION_NOT_IN_PROGRESS"
	ErrInvalidTransition    ErrCode = "INVALID_SESSION_TRANSITION"
	ErrUnknownQuestion      ErrCode = "UNKNOWN_QUESTION"
	ErrInvalidScore         ErrCode = "INVALID_SCORE"
	ErrEmptyReport          ErrCode = "EMPTY_REPORT"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal           ErrCode = "INTERNAL_ERROR"
	ErrServiceUnavailable ErrCode = "SERVICE_UNAVAILABLE"
)

// GetMessage returns the user-facing (French) message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email ou mot de passe incorrect."
	case ErrTokenRequired:
		return "Un jeton d'authentification est requis."
	case ErrTokenInvalid:
		return "Le jeton d'authentification est invalide."
	case ErrTokenExpired:
		return "Le jeton d'authentification a expiré."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Vous n'avez pas l'autorisation d'accéder à cette ressource."
	case ErrAdminAccessOnly:
		return "Cette ressource est réservée aux administrateurs."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "La validation a échoué. Veuillez vérifier votre saisie."
	case ErrInvalidID:
		return "Format d'identifiant invalide."
	case ErrInvalidPayload:
		return "Le contenu de la requête est invalide."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Ressource introuvable."
	case ErrConflict:
		return "La ressource existe déjà."

	// ─── Assessment ────────────────────────────────────────────────────
	case ErrSessionNotInProgress:
		return "La séance d'évaluation n'est pas en cours."
	case ErrInvalidTransition:
		return "Ce changement de statut n'est pas autorisé pour cette séance."
	case ErrUnknownQuestion:
		return "Cette question n'existe pas dans le questionnaire."
	case ErrInvalidScore:
		return "La réponse doit être comprise entre 0 et 3."
	case ErrEmptyReport:
		return "Aucune réponse n'a été enregistrée pour cette séance."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Trop de requêtes. Veuillez réessayer plus tard."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Une erreur interne est survenue."
	case ErrServiceUnavailable:
		return "Le service est temporairement indisponible."
	default:
		return "Une erreur inattendue est survenue."
	}
}
