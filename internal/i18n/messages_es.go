package i18n

// spanishMessages contains all Spanish translations.
var spanishMessages = map[string]string{
	// Error messages
	"error.generic":          "Algo salió mal. Inténtalo de nuevo.",
	"error.load_failed":      "No se pudo cargar {0}",
	"error.login_required":   "Inicia sesión primero con `tunedeck login`",
	"error.lyrics_not_found": "No hay letra para esta canción",

	// Context menu entries
	"menu.add_to_queue":        "Agregar a la fila",
	"menu.add_to_playlist":     "Agregar a playlist",
	"menu.save_to_library":     "Guardar en tus Me gusta",
	"menu.remove_from_library": "Eliminar de tus Me gusta",
	"menu.song_radio":          "Ir a radio de la canción",
	"menu.go_to_artist":        "Ir al artista",
	"menu.go_to_album":         "Ir al álbum",
	"menu.copy_link":           "Copiar enlace de la canción",

	// Toasts
	"toast.queue_added":      "Agregado a la fila",
	"toast.queue_failed":     "No se pudo agregar a la fila",
	"toast.playlist_added":   "Agregado a la playlist",
	"toast.playlist_failed":  "No se pudo agregar a la playlist",
	"toast.saved":            "%s guardada en tus Me gusta",
	"toast.removed":          "%s eliminada de tus Me gusta",
	"toast.copied":           "Enlace copiado al portapapeles",
	"toast.copy_failed":      "No se pudo copiar el enlace",
	"toast.not_implemented":  "Todavía no está disponible",
	"toast.device_not_found": "No se encontró el dispositivo. Reconectando",
	"toast.no_device":        "No hay dispositivos de Spotify. Abre Spotify en algún dispositivo",
	"toast.no_preview":       "Esta canción no tiene vista previa",
	"toast.nothing_to_play":  "Nada para reproducir",
	"toast.device_selected":  "Reproduciendo en {0}",
	"toast.language_changed": "Idioma cambiado",

	// Interface labels
	"ui.home":               "Inicio",
	"ui.playlists":          "Playlists",
	"ui.liked_songs":        "Tus Me gusta",
	"ui.albums":             "Álbumes",
	"ui.shows":              "Podcasts",
	"ui.artists":            "Artistas",
	"ui.devices":            "Dispositivos",
	"ui.history":            "Escuchado recientemente",
	"ui.preferences":        "Preferencias",
	"ui.language":           "Idioma",
	"ui.now_playing":        "Reproduciendo",
	"ui.up_next":            "A continuación",
	"ui.lyrics":             "Letra",
	"ui.loading":            "Cargando...",
	"ui.nothing_playing":    "Nada en reproducción",
	"ui.no_devices":         "No se encontraron dispositivos",
	"ui.active":             "activo",
	"ui.preview_mode":       "Modo vista previa",
	"ui.reconnection_error": "Se perdió la conexión con el dispositivo",
	"ui.unavailable":        "No disponible",
	"ui.tracks_count":       "{0} canciones",
	"ui.loaded_of":          "{0} de {1} cargadas",
	"ui.followers":          "{0} seguidores",
	"ui.episodes":           "Episodios",
	"ui.top_tracks":         "Populares",
	"ui.help":               "espacio reproducir/pausa · enter reproducir · n/p sig/ant · ←/→ adelantar · +/- volumen · m menú · f pantalla completa · l letra · s guardar · tab sección · esc atrás · q salir",
}
