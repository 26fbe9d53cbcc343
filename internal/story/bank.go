package story

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/narratron/narratron/internal/theme"
	nerrors "github.com/narratron/narratron/pkg/narratron/errors"
)

// Entry holds the fragment pools for one theme. Fragments may reference the
// placeholders {personaje}, {lugar} and {objeto}, filled at compose time.
type Entry struct {
	Introductions []string `yaml:"introducciones"`
	Developments  []string `yaml:"desarrollos"`
	Resolutions   []string `yaml:"desenlaces"`
	Characters    []string `yaml:"personajes"`
	Places        []string `yaml:"lugares"`
	Objects       []string `yaml:"objetos"`
}

// Bank is the process-wide template store. It is built once at startup and
// read-only afterwards, so concurrent readers need no locking.
type Bank struct {
	entries map[theme.Theme]Entry
}

var (
	defaultBank *Bank
	defaultOnce sync.Once
)

// Default returns the built-in bank, constructing it on first use.
func Default() *Bank {
	defaultOnce.Do(func() {
		defaultBank = &Bank{entries: builtinEntries()}
	})
	return defaultBank
}

// Load reads a bank from a YAML file, keyed by theme value. The file must
// define an entry for the generic theme, since it is the fallback for every
// lookup. Unknown theme keys are a configuration error, not silently dropped.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bank file: %w", err)
	}

	raw := make(map[string]Entry)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing bank file: %w", err)
	}

	entries := make(map[theme.Theme]Entry, len(raw))
	for key, entry := range raw {
		t := theme.Theme(key)
		if !theme.Valid(t) {
			return nil, nerrors.NewConfigurationError("bank", fmt.Sprintf("unknown theme %q in %s", key, path))
		}
		entries[t] = entry
	}

	if _, ok := entries[theme.Generic]; !ok {
		return nil, nerrors.NewConfigurationError("bank", fmt.Sprintf("bank file %s has no %q entry", path, theme.Generic))
	}

	return &Bank{entries: entries}, nil
}

// Entry returns the pools for t, falling back to the generic entry when the
// theme has no pools of its own. Defensive: the classifier only emits themes
// from the closed set.
func (b *Bank) Entry(t theme.Theme) Entry {
	if e, ok := b.entries[t]; ok {
		return e
	}
	return b.entries[theme.Generic]
}

// Themes lists every theme the bank has pools for.
func (b *Bank) Themes() []theme.Theme {
	out := make([]theme.Theme, 0, len(b.entries))
	for t := range b.entries {
		out = append(out, t)
	}
	return out
}

func builtinEntries() map[theme.Theme]Entry {
	return map[theme.Theme]Entry{
		theme.Adventure: {
			Introductions: []string{
				"Érase una vez un {personaje} que soñaba con conocer lo que había más allá de las colinas de su aldea. Una mañana de niebla encontró un {objeto} olvidado entre las raíces de un árbol viejo, y al sostenerlo sintió que el mundo entero lo llamaba. Sin pensarlo dos veces preparó su morral y tomó el sendero que llevaba hacia el {lugar}.",
				"Hace mucho tiempo, en un {lugar} que no figuraba en ningún mapa, vivía un {personaje} inquieto al que ningún camino le parecía demasiado largo. Guardaba bajo su cama un {objeto} heredado de su abuelo, y cada noche lo estudiaba a la luz de una vela, convencido de que señalaba el comienzo de un viaje que nadie se había atrevido a intentar.",
			},
			Developments: []string{
				"Sin embargo, algo inesperado sucedió: al cruzar el umbral del {lugar}, el suelo tembló y el sendero que había seguido desapareció a sus espaldas. El {personaje} comprendió que ya no había vuelta atrás. Guiándose por el {objeto}, atravesó gargantas heladas y ríos que cantaban, y en cada paso descubrió que el miedo pesaba menos cuando se avanzaba con curiosidad.",
				"Pero pronto descubrió que el viaje no sería como lo había imaginado. Una tormenta borró las señales, el {objeto} dejó de responder y el {lugar} pareció cerrarse sobre él. El {personaje} tuvo que aprender a leer las estrellas, a pedir ayuda a los desconocidos y a confiar en su propio ingenio más que en cualquier mapa.",
			},
			Resolutions: []string{
				"Y así fue como el {personaje} llegó por fin al corazón del {lugar}, donde entendió que el verdadero tesoro no era el {objeto} sino todo lo aprendido en el camino. Regresó a su aldea con historias que nadie creía del todo, y desde entonces cada niño que lo escuchaba empezaba a mirar el horizonte con otros ojos.",
				"Finalmente, cuando el {lugar} quedó atrás y el {objeto} descansó de nuevo en su morral, el {personaje} supo que ninguna aventura termina de verdad: solo se transforma en la siguiente. Volvió a casa más sabio y más liviano, y dejó la puerta entreabierta, por si el camino volvía a llamarlo.",
			},
			Characters: []string{"héroe", "explorador", "joven aventurero", "viajero incansable", "navegante curioso"},
			Places:     []string{"bosque encantado", "valle oculto", "desierto infinito", "puente entre mundos", "templo antiguo"},
			Objects:    []string{"mapa misterioso", "diario secreto", "amuleto mágico", "catalejo dorado"},
		},
		theme.Mystery: {
			Introductions: []string{
				"Cuenta la leyenda que en el {lugar} las luces se encendían solas cuando nadie miraba. Un {personaje} decidió averiguar por qué, y la primera noche de guardia encontró un {objeto} junto a la ventana, envuelto en un pañuelo con iniciales que nadie reconocía. Aquello no estaba allí la tarde anterior, y esa certeza le quitó el sueño.",
				"En tiempos remotos, un {personaje} recibió una carta sin remitente que lo citaba en el {lugar} a medianoche. Solo decía: trae el {objeto} y no se lo cuentes a nadie. No sabía de qué hablaba la carta hasta que, al abrir el cajón de su escritorio, encontró el {objeto} esperándolo, como si siempre hubiera estado ahí.",
			},
			Developments: []string{
				"Pero entonces ocurrió algo extraordinario: el {objeto} contenía un mensaje cifrado que solo se revelaba bajo la luna. Pista tras pista, el {personaje} recorrió pasadizos del {lugar} que no aparecían en ningún plano, y cuanto más se acercaba a la verdad, más claro era que alguien llevaba años protegiendo ese secreto, y que ese alguien lo estaba observando.",
				"No obstante, un día las pistas empezaron a contradecirse. El {personaje} sospechó de todos y de nadie. Volvió al {lugar} con el {objeto} en el bolsillo, repasó cada detalle desde el principio y descubrió que la respuesta había estado siempre a la vista: el misterio no estaba escondido, estaba disfrazado de costumbre.",
			},
			Resolutions: []string{
				"Desde ese día, el {lugar} dejó de guardar silencio. El {personaje} reveló el secreto con cuidado, porque comprendió que toda verdad merece llegar a tiempo y no de golpe. El {objeto} quedó en una vitrina, y quienes pasan frente a él aseguran que todavía guarda una última pista para quien sepa mirar dos veces.",
				"Y de esta manera el enigma quedó resuelto. El {personaje} entendió que los misterios no existen para asustar, sino para enseñarnos a prestar atención. Devolvió el {objeto} a su verdadero dueño, cerró la puerta del {lugar} sin llave, y esa noche durmió tranquilo por primera vez en mucho tiempo.",
			},
			Characters: []string{"detective paciente", "curioso investigador", "bibliotecario insomne", "cartero observador"},
			Places:     []string{"castillo abandonado", "faro del acantilado", "archivo olvidado", "laberinto interminable"},
			Objects:    []string{"diario secreto", "espejo empañado", "pergamino antiguo", "reloj detenido"},
		},
		theme.Magic: {
			Introductions: []string{
				"Érase una vez un {personaje} que vivía junto a un {lugar} donde las cosas comunes se comportaban de manera extraña: las hojas caían hacia arriba y los charcos reflejaban cielos de otros días. Todo empezó la tarde en que encontró un {objeto} que brillaba con luz propia y que, al tocarlo, le susurró su nombre.",
				"Hace mucho tiempo, cuando la magia todavía se escondía en los rincones pequeños, un {personaje} heredó un {objeto} con una advertencia escrita a mano: úsalo solo cuando lo necesites de verdad. Lo guardó durante años, hasta la mañana en que el {lugar} entero amaneció cubierto por una niebla que no se movía con el viento.",
			},
			Developments: []string{
				"Sin embargo, la situación cambió cuando el {objeto} despertó del todo. El {personaje} descubrió que podía escuchar lo que pensaban los árboles y abrir puertas donde antes había muros. Pero cada hechizo cobraba un precio, y el {lugar} empezó a pedirle algo a cambio: que aprendiera a usar ese poder sin perderse a sí mismo.",
				"Pero pronto descubrió que la magia no obedecía a la fuerza sino al cariño. Cuando intentó forzar el {objeto}, el {lugar} se oscureció y las criaturas que lo habitaban se escondieron. Solo cuando el {personaje} pidió las cosas con humildad, la niebla se abrió y le mostró el camino que había estado buscando.",
			},
			Resolutions: []string{
				"Y así el {personaje} aprendió que la verdadera magia está en ver las cosas de manera diferente. Devolvió el {objeto} al corazón del {lugar}, donde seguiría cuidando de todos, y se quedó con lo único que ningún hechizo puede dar: la certeza de que lo extraordinario vive escondido dentro de lo cotidiano.",
				"Finalmente el encantamiento encontró su equilibrio. El {lugar} recuperó sus colores, el {objeto} se apagó con un último destello agradecido, y el {personaje} volvió a su casa sabiendo un secreto que no pensaba contar: que la magia nunca desaparece, solo espera a alguien que la trate con respeto.",
			},
			Characters: []string{"mago aprendiz", "hechicero distraído", "niño curioso", "jardinero de estrellas"},
			Places:     []string{"bosque encantado", "jardín mágico", "castillo entre nubes", "valle de los susurros"},
			Objects:    []string{"libro encantado", "amuleto mágico", "espejo mágico", "cristal luminoso"},
		},
		theme.Friendship: {
			Introductions: []string{
				"Érase una vez un {personaje} que llegó nuevo al {lugar} sin conocer a nadie. Los primeros días fueron largos y callados, hasta que alguien dejó sobre su banco un {objeto} con una nota: pensé que esto te gustaría. No sabía quién era, pero por primera vez desde su llegada sintió que aquel sitio podía ser un hogar.",
				"Hace mucho tiempo, dos vecinos del {lugar} no se dirigían la palabra por una disputa que ninguno de los dos recordaba del todo bien. Un {personaje} que conocía y quería a ambos encontró por casualidad un {objeto} que había pertenecido a los dos en otra época más alegre, y decidió esa misma tarde que aquella vieja amistad dormida merecía una segunda oportunidad.",
			},
			Developments: []string{
				"Sin embargo, algo inesperado sucedió: una tormenta dejó el {lugar} incomunicado y todos tuvieron que arreglárselas juntos. El {personaje} compartió lo poco que tenía, y el {objeto} pasó de mano en mano como una promesa. Entre risas nerviosas y trabajo codo a codo, los desconocidos dejaron de serlo.",
				"Pero pronto descubrieron que la amistad también se pone a prueba. Un malentendido creció hasta volverse silencio, y el {personaje} estuvo a punto de rendirse. Fue el {objeto}, olvidado en un rincón del {lugar}, el que le recordó todo lo que habían construido juntos y lo poco que costaba decir lo siento.",
			},
			Resolutions: []string{
				"Desde ese día, el {lugar} se volvió otro. El {personaje} comprendió que los amigos no se encuentran: se hacen, gesto a gesto, día a día. El {objeto} quedó en la repisa más visible de la casa, no por su valor, sino porque contaba la historia de cómo dos caminos distintos aprendieron a ir juntos.",
				"Y así fue como la amistad venció a la distancia y al orgullo. El {personaje} y sus compañeros siguieron reuniéndose en el {lugar} cada semana, y cuando alguien preguntaba por el {objeto}, contaban la historia completa, porque las historias compartidas son la casa donde viven los amigos.",
			},
			Characters: []string{"niño curioso", "joven tímido", "músico callejero", "panadero generoso"},
			Places:     []string{"pueblo junto al río", "patio escondido", "jardín del barrio", "mercado de los sábados"},
			Objects:    []string{"cuaderno de dibujos", "barrilete remendado", "ajedrez de madera", "farolito de papel"},
		},
		theme.Courage: {
			Introductions: []string{
				"Érase una vez un {personaje} al que todos consideraban miedoso, incluso él mismo. Vivía cerca del {lugar}, ese sitio del que los mayores hablaban en voz baja, y cargaba en el bolsillo un {objeto} que apretaba fuerte cada vez que el corazón se le aceleraba. Una noche, un grito pidiendo ayuda llegó desde la oscuridad, y nadie más lo escuchó.",
				"Hace mucho tiempo, un {personaje} debía cruzar el {lugar} para buscar remedio para su abuela enferma. Todos le dijeron que esperara a que alguien más valiente lo acompañara, pero la noche se venía encima. Tomó un {objeto} como único equipaje y dio el primer paso, que es siempre el más difícil.",
			},
			Developments: []string{
				"Sin embargo, la situación cambió cuando comprendió que el valor no es la ausencia de miedo. El {lugar} le mostró sombras que parecían gigantes y sonidos que helaban la sangre, pero el {personaje} respiró hondo, sostuvo el {objeto} y siguió adelante temblando, porque al otro lado había alguien que lo necesitaba.",
				"Pero entonces ocurrió algo extraordinario: al enfrentar lo que más temía, descubrió que el peligro era mucho más pequeño de cerca que de lejos. Paso a paso, el {personaje} atravesó el {lugar}, y cada vez que el miedo volvía, el {objeto} le recordaba todas las veces que ya lo había vencido.",
			},
			Resolutions: []string{
				"Y así fue como el {personaje} volvió a casa al amanecer, cansado y entero. Nadie lo llamó nunca más miedoso, aunque él sabía la verdad: el miedo seguía allí, solo que ahora caminaba detrás de él y no delante. El {objeto} volvió al bolsillo, listo para la próxima vez que hiciera falta ser valiente.",
				"Desde ese día, cuando alguien en el pueblo siente que el corazón le tiembla, va a ver al {personaje}, que le presta el {objeto} y le cuenta la historia del {lugar}. Y siempre termina igual: la valentía no es no tener miedo, es decidir que hay cosas más importantes que el miedo.",
			},
			Characters: []string{"joven pastor", "aprendiz de herrero", "niño callado", "mensajero novato"},
			Places:     []string{"bosque oscuro", "desfiladero ventoso", "túnel abandonado", "monte de las sombras"},
			Objects:    []string{"medallón gastado", "silbato de hueso", "farol pequeño"},
		},
		theme.Creativity: {
			Introductions: []string{
				"Érase una vez un {personaje} que coleccionaba cosas que los demás tiraban: tornillos sueltos, cajas vacías, ideas a medio terminar. En el {lugar} donde trabajaba, todos repetían las mismas soluciones de siempre, hasta que un día encontró un {objeto} roto que nadie había podido arreglar y decidió intentarlo a su manera.",
				"Hace mucho tiempo, en el {lugar}, se celebraba un concurso que nadie había ganado jamás, porque el desafío parecía imposible. Un {personaje} sin más herramientas que un {objeto} y una cabeza llena de preguntas decidió inscribirse, convencido de que imposible solo significa que nadie lo intentó de la forma correcta todavía.",
			},
			Developments: []string{
				"Sin embargo, algo inesperado sucedió: los primeros intentos fracasaron uno tras otro. En lugar de rendirse, el {personaje} anotó cada error como si fuera un tesoro, combinó el {objeto} con lo que encontró en el {lugar} y empezó a mirar el problema desde ángulos que a nadie se le habían ocurrido: de costado, de atrás, patas arriba.",
				"Pero pronto descubrió que las mejores ideas llegan cuando se mezclan cosas que no deberían mezclarse. El {personaje} unió el {objeto} con un juguete viejo, prestó atención a cómo resolvían las hormigas sus caminos en el {lugar}, y de esa mezcla improbable nació una solución tan simple que todos se preguntaron cómo no la habían visto antes.",
			},
			Resolutions: []string{
				"Y así fue como el {personaje} demostró que la creatividad puede transformar cualquier situación. El {objeto} arreglado quedó funcionando en el centro del {lugar}, y cada vez que alguien decía no se puede, los demás sonreían y contaban esta historia, que siempre termina con la misma pregunta: ¿y si lo probamos de otra manera?",
				"Finalmente el jurado no tuvo dudas. Pero el verdadero premio del {personaje} no fue ganar, sino descubrir que su manera distinta de mirar el mundo era un regalo y no un defecto. Dejó el {objeto} en el {lugar} a la vista de todos, para que nadie olvidara que las ideas nuevas nacen de atreverse a pensar diferente.",
			},
			Characters: []string{"inventor de barrio", "artista soñador", "científico intrépido", "aprendiz de relojero"},
			Places:     []string{"taller del pueblo", "mercado de los inventos", "galpón del puerto", "laboratorio del sótano"},
			Objects:    []string{"mecanismo oxidado", "caleidoscopio rajado", "motor diminuto", "paraguas roto"},
		},
		theme.Perseverance: {
			Introductions: []string{
				"Érase una vez un {personaje} que quería lograr algo que todos consideraban demasiado grande para él. Cada mañana iba al {lugar} a practicar, y cada noche volvía con las manos vacías y el ánimo corto. Lo único que no cambiaba era el {objeto} que llevaba consigo, regalo de alguien que una vez le dijo: lo difícil se entrena.",
				"Hace mucho tiempo, un {personaje} comenzó a construir en el {lugar} algo que tardaría años en terminarse. Los vecinos se reían: para qué empezar lo que no verás terminado. Él anotaba cada pequeño avance con un {objeto}, y sostenía que los sueños grandes se hacen con días pequeños y obstinados.",
			},
			Developments: []string{
				"Sin embargo, la situación cambió cuando llegó el peor de los fracasos: todo el trabajo de meses se deshizo en una sola tarde. El {personaje} miró el {lugar} en silencio, guardó el {objeto}, y se dio permiso para estar triste una noche entera. A la mañana siguiente volvió a empezar, esta vez sabiendo exactamente qué no hacer.",
				"Pero pronto descubrió que rendirse también es un hábito, y que él estaba entrenando justamente el contrario. Cada tropiezo en el {lugar} le enseñaba algo que ningún maestro habría podido enseñarle, y el {objeto} se fue llenando de marcas pequeñas, una por cada intento fallido. Con el tiempo entendió que las marcas no eran cicatrices: eran escalones, y que cada una lo dejaba un poco más cerca.",
			},
			Resolutions: []string{
				"Y así fue como, un día cualquiera que no parecía especial, lo logró. El {personaje} miró el {lugar} donde tantas veces había fallado y entendió que no había sido talento, ni suerte: había sido volver. El {objeto} quedó gastado y hermoso, como quedan las cosas que acompañan un esfuerzo verdadero.",
				"Desde ese día, cuando alguien joven llega al {lugar} con ganas de abandonar, el {personaje} lo recibe sin sermones, le muestra el {objeto} lleno de marcas y le cuenta despacio la única verdad que conoce: casi siempre, la diferencia entre lograrlo y no lograrlo no es el talento ni la suerte, sino un intento más.",
			},
			Characters: []string{"joven herrero", "corredor tozudo", "aprendiz de carpintero", "estudiante empecinado"},
			Places:     []string{"taller de la esquina", "camino del cerro", "astillero viejo", "campo de entrenamiento"},
			Objects:    []string{"cuaderno de intentos", "martillo heredado", "cronómetro abollado", "lápiz de carpintero"},
		},
		theme.Generic: {
			Introductions: []string{
				"Érase una vez un {personaje} que vivía en un {lugar} donde los días se parecían demasiado entre sí, tanto que a veces costaba distinguir un martes de un jueves. Una tarde cualquiera, mientras hacía lo de siempre, encontró un {objeto} que no recordaba haber visto nunca, y tuvo el presentimiento claro de que esa pequeña rareza era el comienzo de una historia.",
				"Hace mucho tiempo, en un {lugar} muy lejano, un {personaje} guardaba un {objeto} sin saber del todo para qué servía. Se lo había dado un desconocido de paso, una mañana cualquiera, con una sola instrucción dicha en voz baja: sabrás usarlo cuando llegue el momento. Y el momento, como suele suceder con esas cosas, llegó justamente el día menos pensado.",
				"Cuenta la leyenda que en el {lugar} habitaba un {personaje} al que le gustaba hacerse preguntas que a nadie más se le ocurrían. Fue una de esas preguntas, de las que parecen no servir para nada, la que lo llevó una tarde hasta un {objeto} olvidado, y el {objeto}, a su vez, lo llevó derecho hasta esta historia.",
			},
			Developments: []string{
				"Sin embargo, algo inesperado sucedió: el {objeto} cambió las reglas de su vida tranquila. El {personaje} tuvo que salir del {lugar}, hablar con gente que no conocía y resolver problemas que no venían en ningún libro. En cada dificultad descubría una habilidad que no sabía que tenía, y en cada desvío, una parte nueva de sí mismo.",
				"Pero pronto descubrió que nada era lo que parecía. El {lugar} guardaba más de una sorpresa, y el {objeto}, más de un secreto. Hubo días buenos y días torcidos, ayudantes inesperados y contratiempos tercos, y el {personaje} aprendió a seguir adelante con lo que tenía a mano, que casi siempre alcanzaba.",
			},
			Resolutions: []string{
				"Y así fue como todo encontró su lugar. El {personaje} volvió a su rutina, aunque ya no era el mismo: ahora sabía que cualquier tarde cualquiera puede esconder el comienzo de algo grande. El {objeto} quedó en su estante, quieto y discreto, esperando con paciencia al próximo que quiera preguntarse por él.",
				"Finalmente, el {personaje} comprendió que las historias no les pasan solo a los héroes de los libros: le pasan a cualquiera que diga que sí cuando la vida propone algo raro. El {lugar} siguió siendo el mismo de siempre, y el {objeto} también, pero quien los miraba ya no era la misma persona, y esa diferencia, aunque nadie más pudiera verla, lo cambiaba absolutamente todo.",
			},
			Characters: []string{"héroe", "explorador", "sabio", "joven aventurero", "curioso investigador", "artista soñador"},
			Places:     []string{"bosque encantado", "valle oculto", "pueblo junto al río", "templo antiguo", "jardín mágico"},
			Objects:    []string{"mapa misterioso", "libro encantado", "amuleto mágico", "diario secreto", "cristal luminoso"},
		},
	}
}
