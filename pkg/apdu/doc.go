/*
Package apdu implements the ISO/IEC 7816-4 wire format used to talk to
smart cards: Command APDU encoding, Response APDU splitting, and Status
Word (SW1/SW2) interpretation.

# Fundamentals

The exchange with a card is strictly synchronous:
 1. The host sends a Command APDU (4-byte header + optional body).
 2. The card returns a Response APDU (optional data + 2-byte trailer).

# Status Words

Every complete response ends with a 2-byte Status Word (SW).
  - 0x9000: Success.
  - 0x61XX: Success, XX more response bytes are available (GET RESPONSE).
  - 0x6CXX: Wrong expected length, the correct Le is XX.
  - Other: Various warning and error conditions.

Responses shorter than 2 bytes are a transport anomaly rather than a
card-reported state. Split handles them leniently: the data field is
empty and the status word defaults to 0x0000, so the caller can always
inspect SW1/SW2 without a length check.

# Traces

A Trace records the chronological Command/Response pairs of one logical
exchange. A single logical command may produce several physical
transactions when the card answers 61XX and the host follows up with
GET RESPONSE; the trace keeps the whole conversation for diagnostics.
*/
package apdu
