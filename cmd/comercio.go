// ABOUTME: Ferias and locales comerciales commands for the panel CLI
// ABOUTME: Plain CRUD collections built from the generic resource

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gadibarra/panel-municipal/internal/client"
)

var ferias = resource[client.Feria, client.FeriaInput]{
	use:      "ferias",
	aliases:  []string{"feria", "f"},
	short:    "Manage scheduled fairs",
	noun:     "feria",
	feminine: true,
	estados:  "programada, activa, finalizada",

	list:   (*client.Client).ListFerias,
	get:    (*client.Client).GetFeria,
	create: (*client.Client).CreateFeria,
	update: (*client.Client).UpdateFeria,
	remove: (*client.Client).DeleteFeria,

	headers: []string{"ID", "Nombre", "Ubicación", "Inicio", "Fin", "Estado"},
	row: func(f client.Feria) []string {
		return []string{f.ID.String(), f.Nombre, f.Ubicacion, f.FechaInicio, f.FechaFin, client.EstadoLabel(f.Estado)}
	},
	detail: func(f client.Feria) string {
		return formatFields(
			"ID", f.ID.String(),
			"Nombre", f.Nombre,
			"Descripción", f.Descripcion,
			"Ubicación", f.Ubicacion,
			"Inicio", f.FechaInicio,
			"Fin", f.FechaFin,
			"Estado", client.EstadoLabel(f.Estado),
		)
	},
	bind: func(cmd *cobra.Command, in *client.FeriaInput) {
		f := cmd.Flags()
		f.StringVar(&in.Nombre, "nombre", "", "Fair name")
		f.StringVar(&in.Descripcion, "descripcion", "", "Description")
		f.StringVar(&in.Ubicacion, "ubicacion", "", "Location")
		f.StringVar(&in.FechaInicio, "fecha-inicio", "", "Start date (YYYY-MM-DD)")
		f.StringVar(&in.FechaFin, "fecha-fin", "", "End date (YYYY-MM-DD)")
		f.StringVar(&in.Estado, "estado", "", "Estado: programada, activa, finalizada")
	},
	required: []string{"nombre"},
}

var locales = resource[client.LocalComercial, client.LocalComercialInput]{
	use:     "locales",
	aliases: []string{"local", "l"},
	short:   "Manage registered commercial premises",
	noun:    "local comercial",
	estados: "activo, pendiente, suspendido",

	list:   (*client.Client).ListLocales,
	get:    (*client.Client).GetLocal,
	create: (*client.Client).CreateLocal,
	update: (*client.Client).UpdateLocal,
	remove: (*client.Client).DeleteLocal,

	headers: []string{"ID", "Nombre", "Propietario", "Tipo", "Dirección", "Estado"},
	row: func(l client.LocalComercial) []string {
		return []string{l.ID.String(), l.Nombre, l.Propietario, l.TipoNegocio, l.Direccion, client.EstadoLabel(l.Estado)}
	},
	detail: func(l client.LocalComercial) string {
		return formatFields(
			"ID", l.ID.String(),
			"Nombre", l.Nombre,
			"Propietario", l.Propietario,
			"Tipo", l.TipoNegocio,
			"Dirección", l.Direccion,
			"Teléfono", l.Telefono,
			"Correo", l.Email,
			"Estado", client.EstadoLabel(l.Estado),
			"Registrado", l.FechaRegistro,
		)
	},
	bind: func(cmd *cobra.Command, in *client.LocalComercialInput) {
		f := cmd.Flags()
		f.StringVar(&in.Nombre, "nombre", "", "Business name")
		f.StringVar(&in.Propietario, "propietario", "", "Owner")
		f.StringVar(&in.TipoNegocio, "tipo", "", "Business type")
		f.StringVar(&in.Direccion, "direccion", "", "Address")
		f.StringVar(&in.Telefono, "telefono", "", "Phone")
		f.StringVar(&in.Email, "email", "", "Email")
		f.StringVar(&in.Estado, "estado", "", "Estado: activo, pendiente, suspendido")
	},
	required: []string{"nombre"},
}

func init() {
	rootCmd.AddCommand(ferias.command(), locales.command())
}
