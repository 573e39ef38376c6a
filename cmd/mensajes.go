// ABOUTME: Mensajes commands for the panel CLI
// ABOUTME: List, read, send and delete internal messages

package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/gadibarra/panel-municipal/internal/client"
)

var mensajes = resource[client.Mensaje, client.MensajeInput]{
	use:     "mensajes",
	aliases: []string{"mensaje", "m"},
	short:   "Read and send internal messages",
	noun:    "mensaje",
	estados: "leido, no-leido",

	list:   (*client.Client).ListMensajes,
	get:    (*client.Client).GetMensaje,
	remove: (*client.Client).DeleteMensaje,

	headers: []string{"ID", "De", "Para", "Leído", "Enviado", "Contenido"},
	row: func(m client.Mensaje) []string {
		return []string{m.ID.String(), m.Remitente, m.Destinatario, leido(m.Leido), m.FechaEnvio, excerpt(m.Contenido, 40)}
	},
	detail: formatMensaje,
}

func formatMensaje(m client.Mensaje) string {
	return formatFields(
		"ID", m.ID.String(),
		"De", m.Remitente,
		"Para", m.Destinatario,
		"Enviado", m.FechaEnvio,
		"Leído", leido(m.Leido),
		"Contenido", m.Contenido,
	)
}

func leido(b bool) string {
	if b {
		return "sí"
	}
	return "no"
}

// excerpt shortens s to n runes
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	cmd := mensajes.command()

	var in client.MensajeInput
	send := &cobra.Command{
		Use:   "send",
		Short: "Send a message",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runAndExit(cmd, func(ctx context.Context, w io.Writer, c *client.Client) int {
				return runSend(ctx, w, c, in)
			})
		},
	}
	send.Flags().StringVar(&in.Destinatario, "para", "", "Recipient username")
	send.Flags().StringVar(&in.Contenido, "contenido", "", "Message text")
	_ = send.MarkFlagRequired("para")
	_ = send.MarkFlagRequired("contenido")

	read := &cobra.Command{
		Use:   "read ID",
		Short: "Mark a message as read",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runAndExit(cmd, func(ctx context.Context, w io.Writer, c *client.Client) int {
				return runMarkRead(ctx, w, c, client.ID(args[0]))
			})
		},
	}

	cmd.AddCommand(send, read)
	rootCmd.AddCommand(cmd)
}

// runSend sends a message and returns exit code
func runSend(ctx context.Context, w io.Writer, c *client.Client, in client.MensajeInput) int {
	return report(w, c.SendMensaje(ctx, in), func(m client.Mensaje) string {
		return "Mensaje enviado a " + m.Destinatario + ".\n" + formatMensaje(m)
	})
}

// runMarkRead marks id as read and returns exit code
func runMarkRead(ctx context.Context, w io.Writer, c *client.Client, id client.ID) int {
	return report(w, c.MarkMensajeLeido(ctx, id), func(m client.Mensaje) string {
		return "Mensaje " + id.String() + " marcado como leído."
	})
}
