package handlers

import (
	"net/http"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// QRCodeSize is the edge length of generated join codes in pixels
const QRCodeSize = 256

// HandleQRCode renders a QR code of the room's join page
func (ctx *Context) HandleQRCode(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	png, err := qrcode.Encode(joinURL(ctx.PublicURL, code), qrcode.Medium, QRCodeSize)
	if err != nil {
		ctx.Logger.Error("qr encode failed", zap.String("room", code), zap.Error(err))
		http.Error(w, "Could not render QR code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}

func joinURL(publicURL, code string) string {
	return publicURL + "/rooms/" + code
}
