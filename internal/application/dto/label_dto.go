package dto

// PrintLabelsRequest IDs de lotes o materiales a imprimir en etiquetas.
type PrintLabelsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=200"`
}
