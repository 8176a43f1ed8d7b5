// Package codec converts student records into the byte payloads that are
// packed into blocks.
//
// # Encodings
//
// Two encodings are supported and selected when the codec is created.
//
// Fixed encoding reserves one column per field. Each field is rendered to
// text, left-justified, padded with spaces and truncated to its column width:
//
//	[ID(9)][Name(50)][CPF(11)][Course(30)][Mother(30)][Father(30)][Year(4)][GPA(5)]
//
// The GPA column always carries two fractional digits ("7.50 "). Any space
// left after the columns is filled with '#' so that every payload is exactly
// 169 bytes.
//
// Variable encoding joins the natural text form of every field with commas
// and terminates the payload with the end-of-record byte 0xFE:
//
//	123456789,Ana Souza,12345678909,Sistemas de Informação,...,7.5<0xFE>
//
// # Text
//
// All text is stored as ISO-8859-1 (Latin-1). Runes that Latin-1 cannot
// represent are dropped during encoding. Variable encoding rejects fields
// that contain a comma or one of the reserved bytes 0xFE and 0xFF, since a
// reader could not split such a payload back into fields.
//
// # Usage
//
//	c := codec.NewRecordCodec(codec.Variable)
//
//	payload, err := c.Encode(rec)
//	if err != nil {
//	    return err
//	}
//
//	useful := c.UsefulBytes(payload) // bytes carrying field data
//
//	decoded, err := c.Decode(payload)
//	if err != nil {
//	    return err
//	}
//
// EncodeAll encodes a whole batch concurrently while preserving input order.
//
// # Thread Safety
//
// RecordCodec instances are stateless and safe for concurrent use.
package codec
