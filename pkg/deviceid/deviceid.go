package deviceid

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Nombre del archivo donde se persiste el identificador dentro del directorio base.
const fileName = "device_id"

// Generator produce y cachea un identificador estable por instalación.
// El identificador se genera una sola vez y se persiste en disco; llamadas
// posteriores devuelven siempre el mismo valor. Si el almacenamiento no está
// disponible se degrada a un identificador solo en memoria para esta sesión.
type Generator struct {
	mu      sync.Mutex
	baseDir string
	cached  string
}

// NewGenerator construye el generador con un directorio base para persistencia.
// Si baseDir es vacío se usa el directorio de configuración del usuario.
func NewGenerator(baseDir string) *Generator {
	if baseDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			baseDir = filepath.Join(dir, "ordexa")
		}
	}
	return &Generator{baseDir: baseDir}
}

// Get devuelve el identificador persistente del dispositivo.
// Primera llamada: lee el archivo si existe; si no, genera uno nuevo y lo guarda.
// Nunca falla: si no se puede leer ni escribir, el id vive solo en memoria.
func (g *Generator) Get() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cached != "" {
		return g.cached
	}

	path := filepath.Join(g.baseDir, fileName)
	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			g.cached = id
			return g.cached
		}
	}

	g.cached = newID()

	// Persistencia best-effort: sin disco el id queda solo en memoria.
	if g.baseDir != "" {
		if err := os.MkdirAll(g.baseDir, 0o700); err == nil {
			_ = os.WriteFile(path, []byte(g.cached), 0o600)
		}
	}
	return g.cached
}

// newID genera un UUID aleatorio; si la fuente criptográfica falla,
// cae a un esquema timestamp + sufijo aleatorio en base36.
func newID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	suffix := strconv.FormatInt(rand.Int63(), 36)
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix)
}
