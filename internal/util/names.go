package util

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// UIDRoot is the prefix of every UID the synthetic generator emits.
const UIDRoot = "1.2.826.0.1.3680043.8.498."

// DeterministicUID derives a DICOM UID from seed. The same seed always
// yields the same UID, and the result never exceeds 64 characters.
func DeterministicUID(seed string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	h2 := fnv.New32a()
	_, _ = h2.Write([]byte(seed))
	return fmt.Sprintf("%s%d.%d", UIDRoot, h.Sum64(), h2.Sum32())
}

var (
	firstNames = []string{
		"Mary", "Linda", "Susan", "Karen", "Nancy", "Helen", "Anne", "Claire",
		"Sophie", "Camille", "Isabelle", "Nathalie", "Martine", "Sylvie",
	}
	lastNames = []string{
		"Smith", "Johnson", "Brown", "Taylor", "Walker", "Martin", "Bernard",
		"Dubois", "Moreau", "Laurent", "Lefebvre", "Garcia", "Fournier",
	}
)

// PatientName returns a name in DICOM PN form, "LAST^FIRST". A nil rng
// uses a process-wide source.
func PatientName(rng *rand.Rand) string {
	pick := rand.IntN
	if rng != nil {
		pick = rng.IntN
	}
	return lastNames[pick(len(lastNames))] + "^" + firstNames[pick(len(firstNames))]
}
