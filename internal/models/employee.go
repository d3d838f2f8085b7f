package models

// Employee représente une ligne de la liste du personnel (社員code / 氏名 / 工場)
type Employee struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Factory  string `json:"factory"`
	CodeName string `json:"codeName,omitempty"`
}

// DisplayName est le libellé "demandeur" écrit dans le registre et sur le bon de commande
func (e Employee) DisplayName() string {
	if e.CodeName != "" {
		return e.CodeName
	}
	if e.Name == "" {
		return e.ID
	}
	return e.ID + " " + e.Name
}
