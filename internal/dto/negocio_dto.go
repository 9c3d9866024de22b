package dto

type NegocioRequest struct {
	Nombre string `json:"nombre" validate:"required,max=120"`
	Moneda string `json:"moneda" validate:"required,len=3,alpha"`
}
