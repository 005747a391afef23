package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrProfileNotFound    = errors.New("perfil de usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	ErrInvalidCredentials    = errors.New("credenciales inválidas")
	ErrEmailNotVerified      = errors.New("el email no ha sido verificado")
	ErrNotSignedIn           = errors.New("no hay una sesión activa")
	ErrAnonymousAuthDisabled = errors.New("el inicio de sesión anónimo está deshabilitado en el proveedor de identidad")
	ErrInvalidToken          = errors.New("token inválido o expirado")

	ErrFileTooLarge         = errors.New("el archivo supera el tamaño máximo permitido")
	ErrConfirmationRequired = errors.New("la operación requiere confirmación explícita")
	ErrLastSlide            = errors.New("debe existir al menos un slide")
	ErrNothingToPublish     = errors.New("no hay cambios pendientes para publicar")
	ErrPublishInProgress    = errors.New("ya hay una publicación en curso")
	ErrInvalidTransition    = errors.New("transición de vista no permitida")
)

// Kind clasifica un error según la taxonomía de la aplicación.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindAuth       Kind = "AUTH"
	KindUpload     Kind = "UPLOAD"
	KindWrite      Kind = "WRITE"
	KindRead       Kind = "READ"
	KindNotFound   Kind = "NOT_FOUND"
	KindConfig     Kind = "CONFIG"
)

// Error es un error tipado. Field solo aplica a errores de validación.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Validation crea un error de validación asociado a un campo del formulario.
func Validation(field, msg string) error {
	return &Error{Kind: KindValidation, Field: field, Message: msg, Err: ErrInvalidInput}
}

// ValidationErr envuelve un error centinela como error de validación.
func ValidationErr(field string, err error) error {
	return &Error{Kind: KindValidation, Field: field, Err: err}
}

// Auth envuelve un fallo del proveedor de identidad.
func Auth(err error) error { return &Error{Kind: KindAuth, Err: err} }

// Upload envuelve un fallo en la transferencia de un blob.
func Upload(err error) error {
	return &Error{Kind: KindUpload, Message: "error subiendo archivo", Err: err}
}

// Write envuelve un fallo de escritura del almacén de documentos.
func Write(err error) error { return &Error{Kind: KindWrite, Err: err} }

// Read envuelve un fallo de lectura del almacén de documentos.
func Read(err error) error { return &Error{Kind: KindRead, Err: err} }

// NotFound envuelve un documento ausente.
func NotFound(err error) error { return &Error{Kind: KindNotFound, Err: err} }

// Config señala un servicio externo mal configurado (p. ej. sesiones anónimas deshabilitadas).
func Config(err error) error { return &Error{Kind: KindConfig, Err: err} }

// KindOf devuelve el tipo del primer *Error en la cadena, o "" si no hay ninguno.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// FieldOf devuelve el campo asociado a un error de validación.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
